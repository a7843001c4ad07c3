package koikoi

import "github.com/rocketscienceinc/koikoi-backend/internal/entity"

// MatchingFieldCards returns the field cards sharing the given card's month.
// Exported for UI and strategy callers, and the single capture-matching rule
// the engine itself uses.
func MatchingFieldCards(card entity.Card, field []entity.Card) []entity.Card {
	var matches []entity.Card
	for _, fieldCard := range field {
		if fieldCard.Month == card.Month {
			matches = append(matches, fieldCard)
		}
	}
	return matches
}

// LegalCommands lists the command tags the current phase accepts. Turn and
// card-level legality still apply on top.
func LegalCommands(state *entity.KoiKoiGameState) []string {
	tags := []string{
		TagPlayHandCard, TagSelectHandMatch, TagCancelHandSelection, TagDrawStep,
		TagCommitDrawToField, TagSelectDrawMatch, TagCheckTurn, TagResolveKoiKoi,
		TagStartNextRound, TagReadyNextRound, TagRestartGame,
	}

	var legal []string
	for _, tag := range tags {
		if !PhaseAllows(tag, state.Phase) {
			continue
		}
		// Cancelling is only ever legal for a hand-originated choice.
		if tag == TagCancelHandSelection && state.PendingSource != entity.PendingHand {
			continue
		}
		legal = append(legal, tag)
	}

	return legal
}
