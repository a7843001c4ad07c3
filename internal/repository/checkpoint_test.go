package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
	"github.com/rocketscienceinc/koikoi-backend/testing/suite"
)

func TestCheckpointRepository(t *testing.T) {
	ctx, st := suite.New(t)

	repo := NewCheckpointRepository(st.Storage, time.Minute)

	seed := int64(42)
	state, err := koikoi.NewGame(entity.DefaultRules(), 12, &seed)
	require.NoError(t, err)

	t.Run("save and load round trip", func(t *testing.T) {
		// Given: a host checkpoint at version 7
		err := repo.Save(ctx, &Checkpoint{
			RoomID:  "room-1",
			Role:    RoleHost,
			Version: 7,
			State:   state,
		})
		require.NoError(t, err)

		// When: it is loaded back
		loaded, err := repo.Load(ctx, "room-1", RoleHost)
		require.NoError(t, err)

		// Then: version, role and state survive, and the save time is stamped
		assert.Equal(t, uint64(7), loaded.Version)
		assert.Equal(t, RoleHost, loaded.Role)
		assert.False(t, loaded.SavedAt.IsZero())
		require.NotNil(t, loaded.State)
		assert.Equal(t, state.Round, loaded.State.Round)
		assert.Equal(t, state.Players[0].Hand, loaded.State.Players[0].Hand)
		assert.Equal(t, state.Deck, loaded.State.Deck)
	})

	t.Run("roles are stored independently", func(t *testing.T) {
		err := repo.Save(ctx, &Checkpoint{RoomID: "room-1", Role: RoleGuest, Version: 3, State: state})
		require.NoError(t, err)

		hostCheckpoint, err := repo.Load(ctx, "room-1", RoleHost)
		require.NoError(t, err)
		guestCheckpoint, err := repo.Load(ctx, "room-1", RoleGuest)
		require.NoError(t, err)

		assert.Equal(t, uint64(7), hostCheckpoint.Version)
		assert.Equal(t, uint64(3), guestCheckpoint.Version)
	})

	t.Run("missing checkpoint", func(t *testing.T) {
		_, err := repo.Load(ctx, "room-void", RoleHost)
		require.ErrorIs(t, err, ErrCheckpointNotFound)
	})

	t.Run("clear removes the checkpoint", func(t *testing.T) {
		err := repo.Save(ctx, &Checkpoint{RoomID: "room-2", Role: RoleHost, Version: 1, State: state})
		require.NoError(t, err)

		require.NoError(t, repo.Clear(ctx, "room-2", RoleHost))

		_, err = repo.Load(ctx, "room-2", RoleHost)
		require.ErrorIs(t, err, ErrCheckpointNotFound)
	})

	t.Run("malformed checkpoint is dropped on load", func(t *testing.T) {
		// Given: garbage under a checkpoint key
		key := checkpointKey("room-3", RoleHost)
		require.NoError(t, st.Storage.Set(ctx, key, "{not json", 0).Err())

		// When: it is loaded
		_, err := repo.Load(ctx, "room-3", RoleHost)
		require.ErrorIs(t, err, ErrCheckpointNotFound)

		// Then: the key is gone for good
		exists, err := st.Storage.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)
	})

	t.Run("checkpoint without state is dropped on load", func(t *testing.T) {
		key := checkpointKey("room-4", RoleHost)
		require.NoError(t, st.Storage.Set(ctx, key, `{"room_id":"room-4","role":"host","version":1}`, 0).Err())

		_, err := repo.Load(ctx, "room-4", RoleHost)
		require.ErrorIs(t, err, ErrCheckpointNotFound)
	})

	t.Run("checkpoints expire with the configured ttl", func(t *testing.T) {
		shortLived := NewCheckpointRepository(st.Storage, 100*time.Millisecond)

		err := shortLived.Save(ctx, &Checkpoint{RoomID: "room-5", Role: RoleHost, Version: 1, State: state})
		require.NoError(t, err)

		time.Sleep(300 * time.Millisecond)

		_, err = shortLived.Load(ctx, "room-5", RoleHost)
		require.ErrorIs(t, err, ErrCheckpointNotFound)
	})
}
