package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
)

func botCards(t *testing.T, ids ...int) []entity.Card {
	t.Helper()

	cards := make([]entity.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := entity.CardByID(id)
		require.True(t, ok, "unknown card id %d", id)
		cards = append(cards, card)
	}
	return cards
}

func botState(t *testing.T, phase entity.Phase) *entity.KoiKoiGameState {
	t.Helper()

	return &entity.KoiKoiGameState{
		GameState: entity.GameState{
			Phase: phase,
			Round: 1,
			Players: [2]entity.Player{
				{Name: "Player 1", Hand: botCards(t, 3)},
				{Name: "Player 2", Hand: botCards(t, 5)},
			},
			Winner: entity.NoSeat,
			Deck:   botCards(t, 46),
			Field:  botCards(t, 21),
		},
		Rules:             entity.DefaultRules(),
		RoundWinner:       entity.NoSeat,
		RoundStarterIndex: entity.SeatOne,
		MaxRounds:         12,
	}
}

func TestBotService_NextCommand(t *testing.T) {
	bot := NewBotService()

	t.Run("plays a hand card on its turn", func(t *testing.T) {
		state := botState(t, entity.PhaseSelectHandCard)

		cmd, err := bot.NextCommand(state, entity.SeatOne)
		require.NoError(t, err)

		assert.Equal(t, koikoi.PlayHandCard{CardID: 3}, cmd)
	})

	t.Run("refuses to act off turn", func(t *testing.T) {
		state := botState(t, entity.PhaseSelectHandCard)

		_, err := bot.NextCommand(state, entity.SeatTwo)
		require.ErrorIs(t, err, ErrNoLegalCommand)
	})

	t.Run("honors the forced-match rule", func(t *testing.T) {
		// Given: a hand holding one match and one non-match for the field
		state := botState(t, entity.PhaseSelectHandCard)
		state.Players[0].Hand = botCards(t, 3, 23)

		// Then: the matching card is the only pick, every time
		for i := 0; i < 20; i++ {
			cmd, err := bot.NextCommand(state, entity.SeatOne)
			require.NoError(t, err)
			require.Equal(t, koikoi.PlayHandCard{CardID: 23}, cmd)
		}
	})

	t.Run("picks a pending match from the offered set", func(t *testing.T) {
		state := botState(t, entity.PhaseSelectFieldMatch)
		state.PendingSource = entity.PendingHand
		state.PendingMatches = botCards(t, 22, 24)

		cmd, err := bot.NextCommand(state, entity.SeatOne)
		require.NoError(t, err)

		match, ok := cmd.(koikoi.SelectHandMatch)
		require.True(t, ok)
		assert.Contains(t, []int{22, 24}, match.FieldCardID)
	})

	t.Run("walks the draw phases", func(t *testing.T) {
		cmd, err := bot.NextCommand(botState(t, entity.PhaseDrawingDeck), entity.SeatOne)
		require.NoError(t, err)
		assert.Equal(t, koikoi.DrawStep{}, cmd)

		cmd, err = bot.NextCommand(botState(t, entity.PhaseDrawReveal), entity.SeatOne)
		require.NoError(t, err)
		assert.Equal(t, koikoi.CommitDrawToField{}, cmd)

		cmd, err = bot.NextCommand(botState(t, entity.PhaseCheckYaku), entity.SeatOne)
		require.NoError(t, err)
		assert.Equal(t, koikoi.CheckTurn{}, cmd)
	})

	t.Run("always banks instead of declaring koikoi", func(t *testing.T) {
		cmd, err := bot.NextCommand(botState(t, entity.PhaseKoiKoiDecision), entity.SeatOne)
		require.NoError(t, err)

		assert.Equal(t, koikoi.ResolveKoiKoi{Decision: koikoi.DecisionStop}, cmd)
	})

	t.Run("readies for the next round from either seat", func(t *testing.T) {
		state := botState(t, entity.PhaseRoundEnd)

		cmd, err := bot.NextCommand(state, entity.SeatTwo)
		require.NoError(t, err)
		assert.Equal(t, koikoi.ReadyNextRound{Seat: entity.SeatTwo}, cmd)

		// When: the seat already readied
		state.ReadyNextRound[entity.SeatTwo] = true
		_, err = bot.NextCommand(state, entity.SeatTwo)
		require.ErrorIs(t, err, ErrNoLegalCommand)
	})

	t.Run("has no move once the game is over", func(t *testing.T) {
		_, err := bot.NextCommand(botState(t, entity.PhaseGameOver), entity.SeatOne)
		require.ErrorIs(t, err, ErrNoLegalCommand)
	})
}

// TestBotService_PlaysFullGame drives both seats with the bot strategy through
// the real engine until the match ends, checking the bookkeeping that must
// hold at every settlement.
func TestBotService_PlaysFullGame(t *testing.T) {
	bot := NewBotService()
	seed := int64(2024)

	state, err := koikoi.NewGame(entity.DefaultRules(), 3, &seed)
	require.NoError(t, err)

	const stepBudget = 5000
	steps := 0

	for ; steps < stepBudget; steps++ {
		if state.Phase == entity.PhaseGameOver {
			break
		}

		seat := state.CurrentPlayerIndex
		if state.Phase == entity.PhaseRoundEnd {
			seat = entity.SeatOne
			if state.ReadyNextRound[seat] {
				seat = entity.SeatTwo
			}
		}

		cmd, err := bot.NextCommand(state, seat)
		require.NoError(t, err, "step %d phase %s", steps, state.Phase)

		next, err := koikoi.Apply(state, cmd)
		require.NoError(t, err)
		require.NotSame(t, state, next, "bot picked an illegal %s in phase %s", cmd.Tag(), state.Phase)

		state = next
	}

	require.Less(t, steps, stepBudget, "game did not finish")
	require.Equal(t, entity.PhaseGameOver, state.Phase)

	// Then: the ledger accounts for every point on the board
	ledger := [2]int{}
	for _, score := range state.RoundScoreHistory {
		if score.Winner != entity.NoSeat {
			ledger[score.Winner] += score.Points
		}
	}
	assert.Equal(t, state.Players[0].Score, ledger[0])
	assert.Equal(t, state.Players[1].Score, ledger[1])

	// Then: the winner strictly out-scored the loser, or nobody did
	switch state.Winner {
	case entity.SeatOne:
		assert.Greater(t, state.Players[0].Score, state.Players[1].Score)
	case entity.SeatTwo:
		assert.Greater(t, state.Players[1].Score, state.Players[0].Score)
	default:
		assert.Equal(t, state.Players[0].Score, state.Players[1].Score)
	}
}
