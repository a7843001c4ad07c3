package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingHandler(t *testing.T) {
	// When: the health endpoint is hit
	recorder := httptest.NewRecorder()
	pingHandler(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Then: it answers pong
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}
