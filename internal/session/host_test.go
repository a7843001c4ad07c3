package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
)

func testCards(t *testing.T, ids ...int) []entity.Card {
	t.Helper()

	cards := make([]entity.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := entity.CardByID(id)
		require.True(t, ok, "unknown card id %d", id)
		cards = append(cards, card)
	}
	return cards
}

// testState is a deterministic round: seat one holds one non-matching pine
// kasu, so PlayHandCard{CardID: 3} is always its one legal opening move.
func testState(t *testing.T) *entity.KoiKoiGameState {
	t.Helper()

	return &entity.KoiKoiGameState{
		GameState: entity.GameState{
			Phase: entity.PhaseSelectHandCard,
			Round: 1,
			Players: [2]entity.Player{
				{Name: "Player 1", Hand: testCards(t, 3)},
				{Name: "Player 2", Hand: testCards(t, 5)},
			},
			Winner: entity.NoSeat,
			Deck:   testCards(t, 46),
			Field:  testCards(t, 21),
		},
		Rules:             entity.DefaultRules(),
		RoundWinner:       entity.NoSeat,
		RoundStarterIndex: entity.SeatOne,
		MaxRounds:         12,
	}
}

func testAction(t *testing.T, roomID, actionID string, from int, cmd koikoi.Command) ActionPayload {
	t.Helper()

	raw, err := koikoi.EncodeCommand(cmd)
	require.NoError(t, err)

	return ActionPayload{RoomID: roomID, ActionID: actionID, From: from, Command: raw}
}

func TestHost_HandleAction(t *testing.T) {
	t.Run("applies a legal move and bumps the version", func(t *testing.T) {
		// Given: a fresh host at version 1
		host := NewHost("room-1", testState(t))
		require.Equal(t, uint64(1), host.Version())

		// When: the turn holder plays its card
		snapshot, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatOne, koikoi.PlayHandCard{CardID: 3}))

		// Then: the state advanced and the snapshot carries the action id
		require.Nil(t, errPayload)
		assert.Equal(t, uint64(2), snapshot.Version)
		assert.Equal(t, "a-1", snapshot.LastActionID)
		assert.Equal(t, entity.PhaseDrawingDeck, snapshot.State.Phase)
	})

	t.Run("rejects a move from the wrong seat", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		// When: seat two plays while seat one holds the turn
		_, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatTwo, koikoi.PlayHandCard{CardID: 5}))

		// Then: a typed rejection, and nothing moved
		require.NotNil(t, errPayload)
		assert.Equal(t, CodeOutOfTurn, errPayload.Code)
		assert.Equal(t, uint64(1), host.Version())
		assert.Equal(t, entity.PhaseSelectHandCard, host.State().Phase)
	})

	t.Run("rejects a command outside its phase", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		_, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatOne, koikoi.DrawStep{}))

		require.NotNil(t, errPayload)
		assert.Equal(t, CodeInvalidPhase, errPayload.Code)
		assert.Equal(t, uint64(1), host.Version())
	})

	t.Run("rejects a move the game rules refuse", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		// When: the turn holder plays a card it does not have
		_, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatOne, koikoi.PlayHandCard{CardID: 48}))

		require.NotNil(t, errPayload)
		assert.Equal(t, CodeIllegalAction, errPayload.Code)
		assert.Equal(t, uint64(1), host.Version())
	})

	t.Run("rejects an undecodable command", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		_, errPayload := host.HandleAction(ActionPayload{
			RoomID: "room-1", ActionID: "a-1", From: entity.SeatOne,
			Command: []byte(`{"tag":"teleport"}`),
		})

		require.NotNil(t, errPayload)
		assert.Equal(t, CodeIllegalAction, errPayload.Code)
	})

	t.Run("rejects an action for another room", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		_, errPayload := host.HandleAction(testAction(t, "room-2", "a-1", entity.SeatOne, koikoi.PlayHandCard{CardID: 3}))

		require.NotNil(t, errPayload)
		assert.Equal(t, CodeUnknown, errPayload.Code)
	})

	t.Run("replays a duplicate action id without re-applying", func(t *testing.T) {
		host := NewHost("room-1", testState(t))

		first, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatOne, koikoi.PlayHandCard{CardID: 3}))
		require.Nil(t, errPayload)

		// When: the same action id arrives again
		second, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatOne, koikoi.PlayHandCard{CardID: 3}))

		// Then: the current snapshot comes back and the version holds still
		require.Nil(t, errPayload)
		assert.Equal(t, first.Version, second.Version)
		assert.Equal(t, "a-1", second.LastActionID)
		assert.Equal(t, uint64(2), host.Version())
	})

	t.Run("allows the ready command from either seat", func(t *testing.T) {
		state := testState(t)
		state.Phase = entity.PhaseRoundEnd
		host := NewHost("room-1", state)

		// When: the non-turn-holder readies for the next round
		snapshot, errPayload := host.HandleAction(testAction(t, "room-1", "a-1", entity.SeatTwo, koikoi.ReadyNextRound{Seat: entity.SeatTwo}))

		require.Nil(t, errPayload)
		assert.Equal(t, [2]bool{false, true}, snapshot.State.ReadyNextRound)
	})
}

func TestHost_SetPlayerIdentity(t *testing.T) {
	host := NewHost("room-1", testState(t))

	// When: a peer takes seat one
	host.SetPlayerIdentity(entity.SeatOne, "peer-a", "Aki", false)

	// Then: the seat is recorded and the version moved
	assert.Equal(t, "peer-a", host.State().Players[0].ID)
	assert.Equal(t, "Aki", host.State().Players[0].Name)
	assert.Equal(t, uint64(2), host.Version())

	// When: the same peer re-announces itself
	host.SetPlayerIdentity(entity.SeatOne, "peer-a", "Aki", false)

	// Then: nothing changes
	assert.Equal(t, uint64(2), host.Version())

	// When: the seat is out of range
	host.SetPlayerIdentity(5, "peer-x", "X", false)
	assert.Equal(t, uint64(2), host.Version())
}

func TestRestoreHost(t *testing.T) {
	// Given: a checkpointed state at version 9
	state := testState(t)
	host := RestoreHost("room-1", state, 9)

	require.Equal(t, uint64(9), host.Version())

	// When: a new action arrives after the restore
	snapshot, errPayload := host.HandleAction(testAction(t, "room-1", "a-9", entity.SeatOne, koikoi.PlayHandCard{CardID: 3}))

	// Then: versioning continues from the checkpoint
	require.Nil(t, errPayload)
	assert.Equal(t, uint64(10), snapshot.Version)
}

func TestDedupeRing(t *testing.T) {
	// Given: a two-slot window
	ring := newDedupeRing(2)

	ring.Add("a")
	ring.Add("b")
	assert.True(t, ring.Seen("a"))
	assert.True(t, ring.Seen("b"))

	// When: a third id pushes the oldest out
	ring.Add("c")

	assert.False(t, ring.Seen("a"))
	assert.True(t, ring.Seen("b"))
	assert.True(t, ring.Seen("c"))

	// When: a known id is re-added
	ring.Add("b")
	assert.True(t, ring.Seen("c"))
}
