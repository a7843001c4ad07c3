package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

func TestDecodeMessage(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		frame, err := EncodeMessage(MsgHello, HelloPayload{RoomID: "room-1", PeerID: "peer-a"})
		require.NoError(t, err)

		msg, err := DecodeMessage(frame)
		require.NoError(t, err)
		assert.Equal(t, MsgHello, msg.Type)

		var hello HelloPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &hello))
		assert.Equal(t, "room-1", hello.RoomID)
		assert.Equal(t, "peer-a", hello.PeerID)
	})

	t.Run("rejects malformed frames", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{broken`))
		require.ErrorIs(t, err, ErrMalformedMessage)
	})

	t.Run("rejects a missing type", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{"payload":{}}`))
		require.ErrorIs(t, err, ErrMalformedMessage)
	})
}

func TestHelloPayload_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		hello := HelloPayload{RoomID: "room-1", PeerID: "peer-a", GameType: GameTypeBot}
		require.NoError(t, hello.Validate())
	})

	t.Run("missing identity", func(t *testing.T) {
		hello := HelloPayload{RoomID: "room-1"}
		require.ErrorIs(t, hello.Validate(), ErrMalformedMessage)
	})

	t.Run("unknown game type", func(t *testing.T) {
		hello := HelloPayload{RoomID: "room-1", PeerID: "peer-a", GameType: "tournament"}
		require.ErrorIs(t, hello.Validate(), ErrMalformedMessage)
	})
}

func TestActionPayload_Validate(t *testing.T) {
	valid := ActionPayload{
		RoomID: "room-1", ActionID: "a-1", From: entity.SeatOne,
		Command: json.RawMessage(`{"tag":"drawStep"}`),
	}
	require.NoError(t, valid.Validate())

	t.Run("missing command", func(t *testing.T) {
		action := valid
		action.Command = nil
		require.ErrorIs(t, action.Validate(), ErrMalformedMessage)
	})

	t.Run("unknown seat", func(t *testing.T) {
		action := valid
		action.From = 3
		require.ErrorIs(t, action.Validate(), ErrMalformedMessage)
	})
}

func TestStatePayload_Validate(t *testing.T) {
	state := StatePayload{RoomID: "room-1", Version: 1, State: testState(t)}
	require.NoError(t, state.Validate())

	state.State = nil
	require.ErrorIs(t, state.Validate(), ErrMalformedMessage)
}
