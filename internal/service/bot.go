package service

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
)

var ErrNoLegalCommand = errors.New("no legal command for seat")

// BotService picks the next command for a seat. It reads the state and the
// public helper queries only, and its choice feeds back into the engine
// exactly like a human action.
type BotService interface {
	NextCommand(state *entity.KoiKoiGameState, seat int) (koikoi.Command, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// NextCommand plays a plain random-legal strategy: a random playable hand
// card, a random capture candidate, and it always banks its points instead of
// declaring koikoi.
func (that *botService) NextCommand(state *entity.KoiKoiGameState, seat int) (koikoi.Command, error) {
	if state.Phase == entity.PhaseRoundEnd {
		if state.ReadyNextRound[seat] {
			return nil, ErrNoLegalCommand
		}
		return koikoi.ReadyNextRound{Seat: seat}, nil
	}

	if state.CurrentPlayerIndex != seat {
		return nil, ErrNoLegalCommand
	}

	switch state.Phase {
	case entity.PhaseSelectHandCard:
		return pickHandCard(state, seat)
	case entity.PhaseSelectFieldMatch:
		match, err := pickPendingMatch(state)
		if err != nil {
			return nil, err
		}
		return koikoi.SelectHandMatch{FieldCardID: match.ID}, nil
	case entity.PhaseSelectDrawMatch:
		match, err := pickPendingMatch(state)
		if err != nil {
			return nil, err
		}
		return koikoi.SelectDrawMatch{FieldCardID: match.ID}, nil
	case entity.PhaseDrawingDeck:
		return koikoi.DrawStep{}, nil
	case entity.PhaseDrawReveal:
		return koikoi.CommitDrawToField{}, nil
	case entity.PhaseCheckYaku:
		return koikoi.CheckTurn{}, nil
	case entity.PhaseKoiKoiDecision:
		return koikoi.ResolveKoiKoi{Decision: koikoi.DecisionStop}, nil
	default:
		return nil, ErrNoLegalCommand
	}
}

// pickHandCard honors the forced-match rule: when any hand card matches the
// field, only matching cards are playable.
func pickHandCard(state *entity.KoiKoiGameState, seat int) (koikoi.Command, error) {
	hand := state.Players[seat].Hand
	if len(hand) == 0 {
		return nil, ErrNoLegalCommand
	}

	playable := make([]entity.Card, 0, len(hand))
	for _, card := range hand {
		if len(koikoi.MatchingFieldCards(card, state.Field)) > 0 {
			playable = append(playable, card)
		}
	}

	if len(playable) == 0 {
		playable = hand
	}

	chosen := playable[rand.Intn(len(playable))] //nolint: gosec // it's ok
	return koikoi.PlayHandCard{CardID: chosen.ID}, nil
}

func pickPendingMatch(state *entity.KoiKoiGameState) (entity.Card, error) {
	if len(state.PendingMatches) == 0 {
		return entity.Card{}, ErrNoLegalCommand
	}
	return state.PendingMatches[rand.Intn(len(state.PendingMatches))], nil //nolint: gosec // it's ok
}
