package entity

// Phase is the state machine position awaiting the next command.
type Phase string

const (
	PhaseSelectHandCard   Phase = "selectHandCard"
	PhaseSelectFieldMatch Phase = "selectFieldMatch"
	PhaseDrawingDeck      Phase = "drawingDeck"
	PhaseDrawReveal       Phase = "drawReveal"
	PhaseSelectDrawMatch  Phase = "selectDrawMatch"
	PhaseCheckYaku        Phase = "checkYaku"
	PhaseKoiKoiDecision   Phase = "koikoiDecision"
	PhaseRoundEnd         Phase = "roundEnd"
	PhaseGameOver         Phase = "gameOver"
)

// PendingSource records where the card awaiting a field-match choice came from.
type PendingSource string

const (
	PendingNone PendingSource = ""
	PendingHand PendingSource = "hand"
	PendingDraw PendingSource = "draw"
)

// RoundReason records how a round was settled.
type RoundReason string

const (
	RoundStopped   RoundReason = "stop"
	RoundExhausted RoundReason = "exhausted"
)

// TurnRecord is one entry of the append-only action log.
type TurnRecord struct {
	Seat        int    `json:"seat"`
	Command     string `json:"command"`
	CardID      int    `json:"card_id,omitempty"`
	CapturedIDs []int  `json:"captured_ids,omitempty"`
}

// RoundScore is one entry of the per-round settlement ledger. The entries of
// a finished match sum to each player's final score.
type RoundScore struct {
	Round  int         `json:"round"`
	Winner int         `json:"winner"`
	Points int         `json:"points"`
	Reason RoundReason `json:"reason"`
}

// GameState is the phase-driven state of one round in progress. It is treated
// as an immutable value: every transition clones it and returns the clone, and
// a rejected command returns the input state untouched.
type GameState struct {
	Phase              Phase        `json:"phase"`
	Deck               []Card       `json:"deck"`
	Field              []Card       `json:"field"`
	Players            [2]Player    `json:"players"`
	CurrentPlayerIndex int          `json:"current_player_index"`
	DrawnCard          *Card        `json:"drawn_card,omitempty"`
	SelectedHandCard   *Card        `json:"selected_hand_card,omitempty"`
	Round              int          `json:"round"`
	KoiKoiCounts       [2]int       `json:"koikoi_counts"`
	NewYaku            []YakuResult `json:"new_yaku,omitempty"`
	Winner             int          `json:"winner"`
	TurnHistory        []TurnRecord `json:"turn_history"`
}

// KoiKoiGameState is the full match state: the round in progress plus the rule
// set, the transient capture-choice context and the cross-round bookkeeping.
type KoiKoiGameState struct {
	GameState

	Rules             RuleConfig    `json:"rules"`
	PendingMatches    []Card        `json:"pending_matches,omitempty"`
	PendingSource     PendingSource `json:"pending_source,omitempty"`
	RoundWinner       int           `json:"round_winner"`
	RoundPoints       int           `json:"round_points"`
	RoundReason       RoundReason   `json:"round_reason,omitempty"`
	RoundStarterIndex int           `json:"round_starter_index"`
	RoundScoreHistory []RoundScore  `json:"round_score_history"`
	MaxRounds         int           `json:"max_rounds"`
	ReadyNextRound    [2]bool       `json:"ready_next_round"`
}

// Clone returns a deep copy. Cards are value types, so copying the slices is
// enough to make the copy independent.
func (that *KoiKoiGameState) Clone() *KoiKoiGameState {
	cloned := *that

	cloned.Deck = append([]Card(nil), that.Deck...)
	cloned.Field = append([]Card(nil), that.Field...)
	cloned.Players[0] = that.Players[0].clone()
	cloned.Players[1] = that.Players[1].clone()
	cloned.NewYaku = append([]YakuResult(nil), that.NewYaku...)
	cloned.TurnHistory = append([]TurnRecord(nil), that.TurnHistory...)
	cloned.PendingMatches = append([]Card(nil), that.PendingMatches...)
	cloned.RoundScoreHistory = append([]RoundScore(nil), that.RoundScoreHistory...)

	if that.DrawnCard != nil {
		drawn := *that.DrawnCard
		cloned.DrawnCard = &drawn
	}
	if that.SelectedHandCard != nil {
		selected := *that.SelectedHandCard
		cloned.SelectedHandCard = &selected
	}

	return &cloned
}

func (that *KoiKoiGameState) CurrentPlayer() *Player {
	return &that.Players[that.CurrentPlayerIndex]
}

func (that *KoiKoiGameState) OpponentIndex() int {
	return 1 - that.CurrentPlayerIndex
}

// IsExhausted reports whether the round can no longer continue: both hands
// played out, or the draw pile is gone.
func (that *KoiKoiGameState) IsExhausted() bool {
	return (len(that.Players[0].Hand) == 0 && len(that.Players[1].Hand) == 0) || len(that.Deck) == 0
}
