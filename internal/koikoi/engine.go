package koikoi

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

// ErrInvalidMaxRounds rejects a match length outside the supported set.
var ErrInvalidMaxRounds = errors.New("max rounds must be 3, 6 or 12")

const scalingBaseThreshold = 7

var validMaxRounds = map[int]bool{3: true, 6: true, 12: true}

// NewGame deals round 1 of a fresh match. A nil seed uses the ambient
// generator; an explicit seed reproduces the deal exactly.
func NewGame(rules entity.RuleConfig, maxRounds int, seed *int64) (*entity.KoiKoiGameState, error) {
	if !validMaxRounds[maxRounds] {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxRounds, maxRounds)
	}

	state := &entity.KoiKoiGameState{
		GameState: entity.GameState{
			Round:  1,
			Winner: entity.NoSeat,
			Players: [2]entity.Player{
				{Name: "Player 1"},
				{Name: "Player 2"},
			},
		},
		Rules:             rules.Normalized(),
		RoundWinner:       entity.NoSeat,
		RoundStarterIndex: entity.SeatOne,
		MaxRounds:         maxRounds,
	}

	if err := dealRound(state, seed); err != nil {
		return nil, err
	}

	return state, nil
}

// Apply runs one command against the state and returns the resulting state.
// A command the rules reject returns the input state pointer untouched, which
// is the caller's no-op signal. The error is reserved for fatal setup
// failures (an exhausted re-deal budget), never for illegal moves.
func Apply(state *entity.KoiKoiGameState, cmd Command) (*entity.KoiKoiGameState, error) {
	switch c := cmd.(type) {
	case PlayHandCard:
		return applyPlayHandCard(state, c), nil
	case SelectHandMatch:
		return applySelectHandMatch(state, c), nil
	case CancelHandSelection:
		return applyCancelHandSelection(state, c), nil
	case DrawStep:
		return applyDrawStep(state), nil
	case CommitDrawToField:
		return applyCommitDrawToField(state), nil
	case SelectDrawMatch:
		return applySelectDrawMatch(state, c), nil
	case CheckTurn:
		return applyCheckTurn(state), nil
	case ResolveKoiKoi:
		return applyResolveKoiKoi(state, c), nil
	case StartNextRound:
		return applyStartNextRound(state, c)
	case ReadyNextRound:
		return applyReadyNextRound(state, c)
	case RestartGame:
		return applyRestartGame(state, c)
	default:
		return state, nil
	}
}

func applyPlayHandCard(state *entity.KoiKoiGameState, cmd PlayHandCard) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseSelectHandCard {
		return state
	}

	player := state.CurrentPlayer()
	cardIndex := player.HandCardIndex(cmd.CardID)
	if cardIndex == -1 {
		return state
	}

	card := player.Hand[cardIndex]
	matches := MatchingFieldCards(card, state.Field)

	// A player must play a matching card when one exists.
	if len(matches) == 0 && anyOtherCardMatches(player.Hand, cardIndex, state.Field) {
		return state
	}

	next := state.Clone()
	hand := next.CurrentPlayer().Hand
	next.CurrentPlayer().Hand = append(hand[:cardIndex], hand[cardIndex+1:]...)

	switch len(matches) {
	case 0:
		next.Field = append(next.Field, card)
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagPlayHandCard, CardID: card.ID,
		})
		next.Phase = entity.PhaseDrawingDeck
	case 3:
		captured := captureFromField(next, card, matches)
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagPlayHandCard, CardID: card.ID, CapturedIDs: captured,
		})
		next.Phase = entity.PhaseDrawingDeck
	default:
		selected := card
		next.SelectedHandCard = &selected
		next.PendingMatches = matches
		next.PendingSource = entity.PendingHand
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagPlayHandCard, CardID: card.ID,
		})
		next.Phase = entity.PhaseSelectFieldMatch
	}

	return next
}

func applySelectHandMatch(state *entity.KoiKoiGameState, cmd SelectHandMatch) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseSelectFieldMatch ||
		state.PendingSource != entity.PendingHand || state.SelectedHandCard == nil {
		return state
	}

	chosen, ok := pendingMatch(state, cmd.FieldCardID)
	if !ok {
		return state
	}

	next := state.Clone()
	captured := captureFromField(next, *next.SelectedHandCard, []entity.Card{chosen})
	next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
		Seat: next.CurrentPlayerIndex, Command: TagSelectHandMatch, CardID: chosen.ID, CapturedIDs: captured,
	})

	next.SelectedHandCard = nil
	next.PendingMatches = nil
	next.PendingSource = entity.PendingNone
	next.Phase = entity.PhaseDrawingDeck

	return next
}

// applyCancelHandSelection rolls a hand-originated match choice back: the
// selected card returns to the hand and the play drops out of the history.
// A draw-originated choice cannot be cancelled.
func applyCancelHandSelection(state *entity.KoiKoiGameState, cmd CancelHandSelection) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseSelectFieldMatch ||
		state.PendingSource != entity.PendingHand || state.SelectedHandCard == nil {
		return state
	}

	next := state.Clone()

	hand := next.CurrentPlayer().Hand
	index := cmd.InsertIndex
	if index < 0 {
		index = 0
	}
	if index > len(hand) {
		index = len(hand)
	}

	hand = append(hand, entity.Card{})
	copy(hand[index+1:], hand[index:])
	hand[index] = *next.SelectedHandCard
	next.CurrentPlayer().Hand = hand

	if n := len(next.TurnHistory); n > 0 && next.TurnHistory[n-1].Command == TagPlayHandCard {
		next.TurnHistory = next.TurnHistory[:n-1]
	}

	next.SelectedHandCard = nil
	next.PendingMatches = nil
	next.PendingSource = entity.PendingNone
	next.Phase = entity.PhaseSelectHandCard

	return next
}

func applyDrawStep(state *entity.KoiKoiGameState) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseDrawingDeck {
		return state
	}

	if len(state.Deck) == 0 {
		next := state.Clone()
		settleExhausted(next)
		return next
	}

	next := state.Clone()
	card := next.Deck[0]
	next.Deck = next.Deck[1:]

	matches := MatchingFieldCards(card, next.Field)
	switch len(matches) {
	case 3:
		captured := captureFromField(next, card, matches)
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagDrawStep, CardID: card.ID, CapturedIDs: captured,
		})
		next.Phase = entity.PhaseCheckYaku
	case 1, 2:
		next.DrawnCard = &card
		next.PendingMatches = matches
		next.PendingSource = entity.PendingDraw
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagDrawStep, CardID: card.ID,
		})
		next.Phase = entity.PhaseSelectDrawMatch
	default:
		next.DrawnCard = &card
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagDrawStep, CardID: card.ID,
		})
		next.Phase = entity.PhaseDrawReveal
	}

	return next
}

func applyCommitDrawToField(state *entity.KoiKoiGameState) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseDrawReveal || state.DrawnCard == nil {
		return state
	}

	next := state.Clone()
	next.Field = append(next.Field, *next.DrawnCard)
	next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
		Seat: next.CurrentPlayerIndex, Command: TagCommitDrawToField, CardID: next.DrawnCard.ID,
	})
	next.DrawnCard = nil
	next.Phase = entity.PhaseCheckYaku

	return next
}

func applySelectDrawMatch(state *entity.KoiKoiGameState, cmd SelectDrawMatch) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseSelectDrawMatch ||
		state.PendingSource != entity.PendingDraw || state.DrawnCard == nil {
		return state
	}

	chosen, ok := pendingMatch(state, cmd.FieldCardID)
	if !ok {
		return state
	}

	next := state.Clone()
	captured := captureFromField(next, *next.DrawnCard, []entity.Card{chosen})
	next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
		Seat: next.CurrentPlayerIndex, Command: TagSelectDrawMatch, CardID: chosen.ID, CapturedIDs: captured,
	})

	next.DrawnCard = nil
	next.PendingMatches = nil
	next.PendingSource = entity.PendingNone
	next.Phase = entity.PhaseCheckYaku

	return next
}

// applyCheckTurn recomputes the active player's yaku and diffs against the
// recorded set. A kind whose value grew counts as new, so enlarging an
// already-achieved counting set reopens the koikoi decision.
func applyCheckTurn(state *entity.KoiKoiGameState) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseCheckYaku {
		return state
	}

	next := state.Clone()
	player := next.CurrentPlayer()
	achieved := CalculateYaku(player.Captured, next.Rules)

	recorded := make(map[entity.YakuKind]int, len(player.CompletedYaku))
	for _, result := range player.CompletedYaku {
		recorded[result.Kind] = result.Points
	}

	var fresh []entity.YakuResult
	for _, result := range achieved {
		if result.Points > recorded[result.Kind] {
			fresh = append(fresh, result)
		}
	}

	next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
		Seat: next.CurrentPlayerIndex, Command: TagCheckTurn,
	})

	if len(fresh) == 0 {
		if next.IsExhausted() {
			settleExhausted(next)
			return next
		}
		passTurn(next)
		return next
	}

	next.NewYaku = fresh
	player.CompletedYaku = achieved

	seat := next.CurrentPlayerIndex
	anyKoiKoiDeclared := next.KoiKoiCounts[0]+next.KoiKoiCounts[1] > 0
	mustSettle := next.IsExhausted() ||
		(anyKoiKoiDeclared && !next.Rules.Showdown) ||
		next.KoiKoiCounts[seat] >= next.Rules.KoiKoiLimit

	if mustSettle {
		settleStopped(next)
		return next
	}

	next.Phase = entity.PhaseKoiKoiDecision
	return next
}

func applyResolveKoiKoi(state *entity.KoiKoiGameState, cmd ResolveKoiKoi) *entity.KoiKoiGameState {
	if state.Phase != entity.PhaseKoiKoiDecision {
		return state
	}

	switch cmd.Decision {
	case DecisionStop:
		next := state.Clone()
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: next.CurrentPlayerIndex, Command: TagResolveKoiKoi,
		})
		settleStopped(next)
		return next
	case DecisionKoiKoi:
		next := state.Clone()
		seat := next.CurrentPlayerIndex
		if next.KoiKoiCounts[seat] < next.Rules.KoiKoiLimit {
			next.KoiKoiCounts[seat]++
		}
		next.TurnHistory = append(next.TurnHistory, entity.TurnRecord{
			Seat: seat, Command: TagResolveKoiKoi,
		})
		passTurn(next)
		return next
	default:
		return state
	}
}

func applyStartNextRound(state *entity.KoiKoiGameState, cmd StartNextRound) (*entity.KoiKoiGameState, error) {
	if state.Phase != entity.PhaseRoundEnd {
		return state, nil
	}

	next := state.Clone()
	if err := beginNextRound(next, cmd.Seed); err != nil {
		return state, err
	}

	return next, nil
}

func applyReadyNextRound(state *entity.KoiKoiGameState, cmd ReadyNextRound) (*entity.KoiKoiGameState, error) {
	if state.Phase != entity.PhaseRoundEnd {
		return state, nil
	}
	if cmd.Seat != entity.SeatOne && cmd.Seat != entity.SeatTwo {
		return state, nil
	}
	if state.ReadyNextRound[cmd.Seat] {
		return state, nil
	}

	next := state.Clone()
	next.ReadyNextRound[cmd.Seat] = true

	if next.ReadyNextRound[0] && next.ReadyNextRound[1] {
		if err := beginNextRound(next, nil); err != nil {
			return state, err
		}
	}

	return next, nil
}

func applyRestartGame(state *entity.KoiKoiGameState, cmd RestartGame) (*entity.KoiKoiGameState, error) {
	if !validMaxRounds[cmd.MaxRounds] {
		return state, nil
	}

	rules, err := entity.DecodeRules(cmd.Rules)
	if err != nil {
		return state, nil
	}

	next, err := NewGame(rules, cmd.MaxRounds, cmd.Seed)
	if err != nil {
		return state, err
	}

	// Only player identity survives a restart.
	for seat := range next.Players {
		next.Players[seat].ID = state.Players[seat].ID
		next.Players[seat].Name = state.Players[seat].Name
		next.Players[seat].IsBot = state.Players[seat].IsBot
	}

	return next, nil
}

// --- shared transition pieces ---

// captureFromField moves the source card plus the given field cards into the
// active player's captured pile and returns the captured ids.
func captureFromField(state *entity.KoiKoiGameState, source entity.Card, matches []entity.Card) []int {
	player := state.CurrentPlayer()
	player.Captured = append(player.Captured, source)

	ids := []int{source.ID}
	for _, match := range matches {
		state.Field = removeCard(state.Field, match.ID)
		player.Captured = append(player.Captured, match)
		ids = append(ids, match.ID)
	}

	return ids
}

func removeCard(cards []entity.Card, cardID int) []entity.Card {
	for i, card := range cards {
		if card.ID == cardID {
			return append(cards[:i], cards[i+1:]...)
		}
	}
	return cards
}

func pendingMatch(state *entity.KoiKoiGameState, fieldCardID int) (entity.Card, bool) {
	for _, card := range state.PendingMatches {
		if card.ID == fieldCardID {
			return card, true
		}
	}
	return entity.Card{}, false
}

func anyOtherCardMatches(hand []entity.Card, exceptIndex int, field []entity.Card) bool {
	for i, card := range hand {
		if i == exceptIndex {
			continue
		}
		if len(MatchingFieldCards(card, field)) > 0 {
			return true
		}
	}
	return false
}

// passTurn hands the turn to the other player, clearing the per-turn
// artifacts while keeping completed-yaku progress.
func passTurn(state *entity.KoiKoiGameState) {
	state.CurrentPlayerIndex = state.OpponentIndex()
	clearTransients(state)
	state.Phase = entity.PhaseSelectHandCard
}

func clearTransients(state *entity.KoiKoiGameState) {
	state.DrawnCard = nil
	state.SelectedHandCard = nil
	state.PendingMatches = nil
	state.PendingSource = entity.PendingNone
	state.NewYaku = nil
}

// settleStopped awards the active player's points and closes the round.
func settleStopped(state *entity.KoiKoiGameState) {
	seat := state.CurrentPlayerIndex
	player := &state.Players[seat]

	base := entity.TotalYakuPoints(player.CompletedYaku)
	if base == 0 {
		base = state.Rules.NoYakuPoints(seat == state.RoundStarterIndex)
	}

	points := scaleSettlement(state, seat, base)
	player.Score += points

	state.RoundWinner = seat
	state.RoundPoints = points
	state.RoundReason = entity.RoundStopped
	state.RoundScoreHistory = append(state.RoundScoreHistory, entity.RoundScore{
		Round: state.Round, Winner: seat, Points: points, Reason: entity.RoundStopped,
	})

	finishRound(state)
}

// settleExhausted closes a round nobody scored: no winner, no points, and the
// dealer keeps the seat.
func settleExhausted(state *entity.KoiKoiGameState) {
	state.RoundWinner = entity.NoSeat
	state.RoundPoints = 0
	state.RoundReason = entity.RoundExhausted
	state.RoundScoreHistory = append(state.RoundScoreHistory, entity.RoundScore{
		Round: state.Round, Winner: entity.NoSeat, Points: 0, Reason: entity.RoundExhausted,
	})

	finishRound(state)
}

// scaleSettlement applies the configured bonus mode on top of the base.
func scaleSettlement(state *entity.KoiKoiGameState, seat, base int) int {
	if base == 0 {
		return 0
	}

	rules := state.Rules
	selfCount := state.KoiKoiCounts[seat]
	oppCount := state.KoiKoiCounts[1-seat]

	switch rules.KoiKoiBonusMode {
	case entity.BonusAdditive:
		multiplier := 1
		if base >= scalingBaseThreshold {
			multiplier++
		}
		multiplier += selfCount * (rules.SelfKoiKoiFactor - 1)
		multiplier += oppCount * (rules.OpponentKoiKoiFactor - 1)
		return base * multiplier
	case entity.BonusMultiplicative:
		multiplier := 1
		if base >= scalingBaseThreshold {
			multiplier = 2
		}
		multiplier *= intPow(rules.SelfKoiKoiFactor, selfCount)
		multiplier *= intPow(rules.OpponentKoiKoiFactor, oppCount)
		return base * multiplier
	default:
		return base
	}
}

func intPow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// finishRound picks the next dealer, checks for the end of the match and
// moves to roundEnd or gameOver.
func finishRound(state *entity.KoiKoiGameState) {
	clearTransients(state)

	if state.RoundReason != entity.RoundExhausted && state.RoundWinner != entity.NoSeat {
		switch state.Rules.DealerRotation {
		case entity.DealerWinnerStays:
			state.RoundStarterIndex = state.RoundWinner
		case entity.DealerLoserDeals:
			state.RoundStarterIndex = 1 - state.RoundWinner
		case entity.DealerAlternate:
			state.RoundStarterIndex = 1 - state.RoundStarterIndex
		}
	}

	if matchIsOver(state) {
		state.Phase = entity.PhaseGameOver
		state.Winner = matchWinner(state)
		return
	}

	state.ReadyNextRound = [2]bool{}
	state.Phase = entity.PhaseRoundEnd
}

// matchIsOver applies the round limit, the optional tie-driven overtime
// extension and the optional score target.
func matchIsOver(state *entity.KoiKoiGameState) bool {
	rules := state.Rules

	if rules.TargetScore > 0 &&
		(state.Players[0].Score >= rules.TargetScore || state.Players[1].Score >= rules.TargetScore) {
		return true
	}

	if state.Round < state.MaxRounds {
		return false
	}

	tied := state.Players[0].Score == state.Players[1].Score
	if !tied || !rules.OvertimeEnabled {
		return true
	}

	switch rules.OvertimeMode {
	case entity.OvertimeUntilDecision:
		return false
	default:
		return state.Round >= state.MaxRounds+rules.OvertimeRounds
	}
}

func matchWinner(state *entity.KoiKoiGameState) int {
	switch {
	case state.Players[0].Score > state.Players[1].Score:
		return entity.SeatOne
	case state.Players[1].Score > state.Players[0].Score:
		return entity.SeatTwo
	default:
		return entity.NoSeat
	}
}

// beginNextRound deals a fresh round. Only player identity and score carry
// over; the dealer chosen at settlement leads.
func beginNextRound(state *entity.KoiKoiGameState, seed *int64) error {
	state.Round++
	state.KoiKoiCounts = [2]int{}
	state.ReadyNextRound = [2]bool{}
	state.TurnHistory = nil
	state.Winner = entity.NoSeat
	clearTransients(state)

	for seat := range state.Players {
		state.Players[seat].Hand = nil
		state.Players[seat].Captured = nil
		state.Players[seat].CompletedYaku = nil
	}

	return dealRound(state, seed)
}

// dealRound runs the opening deal and arms the selectHandCard phase.
func dealRound(state *entity.KoiKoiGameState, seed *int64) error {
	deal, err := Deal(rngFor(seed))
	if err != nil {
		return fmt.Errorf("failed to deal round %d: %w", state.Round, err)
	}

	state.Players[state.RoundStarterIndex].Hand = deal.Hands[0]
	state.Players[1-state.RoundStarterIndex].Hand = deal.Hands[1]
	state.Field = deal.Field
	state.Deck = deal.Deck
	state.CurrentPlayerIndex = state.RoundStarterIndex
	state.Phase = entity.PhaseSelectHandCard

	return nil
}
