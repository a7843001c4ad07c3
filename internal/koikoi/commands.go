package koikoi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

// Command tags. One tag plus payload per command on the wire.
const (
	TagPlayHandCard        = "playHandCard"
	TagSelectHandMatch     = "selectHandMatch"
	TagCancelHandSelection = "cancelHandSelection"
	TagDrawStep            = "drawStep"
	TagCommitDrawToField   = "commitDrawToField"
	TagSelectDrawMatch     = "selectDrawMatch"
	TagCheckTurn           = "checkTurn"
	TagResolveKoiKoi       = "resolveKoiKoi"
	TagStartNextRound      = "startNextRound"
	TagReadyNextRound      = "readyNextRound"
	TagRestartGame         = "restartGame"
)

var (
	ErrUnknownCommand = errors.New("unknown command tag")
	ErrBadPayload     = errors.New("malformed command payload")
)

// Command is the closed set of moves the engine accepts. The unexported
// marker keeps the union closed so dispatch stays exhaustive.
type Command interface {
	Tag() string
	isCommand()
}

type PlayHandCard struct {
	CardID int `json:"card_id"`
}

type SelectHandMatch struct {
	FieldCardID int `json:"field_card_id"`
}

type CancelHandSelection struct {
	InsertIndex int `json:"insert_index"`
}

type DrawStep struct{}

type CommitDrawToField struct{}

type SelectDrawMatch struct {
	FieldCardID int `json:"field_card_id"`
}

type CheckTurn struct{}

type Decision string

const (
	DecisionKoiKoi Decision = "koikoi"
	DecisionStop   Decision = "stop"
)

type ResolveKoiKoi struct {
	Decision Decision `json:"decision"`
}

type StartNextRound struct {
	Seed *int64 `json:"seed,omitempty"`
}

type ReadyNextRound struct {
	Seat int `json:"seat"`
}

type RestartGame struct {
	MaxRounds int             `json:"max_rounds"`
	Rules     json.RawMessage `json:"rules,omitempty"`
	Seed      *int64          `json:"seed,omitempty"`
}

func (PlayHandCard) Tag() string        { return TagPlayHandCard }
func (SelectHandMatch) Tag() string     { return TagSelectHandMatch }
func (CancelHandSelection) Tag() string { return TagCancelHandSelection }
func (DrawStep) Tag() string            { return TagDrawStep }
func (CommitDrawToField) Tag() string   { return TagCommitDrawToField }
func (SelectDrawMatch) Tag() string     { return TagSelectDrawMatch }
func (CheckTurn) Tag() string           { return TagCheckTurn }
func (ResolveKoiKoi) Tag() string       { return TagResolveKoiKoi }
func (StartNextRound) Tag() string      { return TagStartNextRound }
func (ReadyNextRound) Tag() string      { return TagReadyNextRound }
func (RestartGame) Tag() string         { return TagRestartGame }

func (PlayHandCard) isCommand()        {}
func (SelectHandMatch) isCommand()     {}
func (CancelHandSelection) isCommand() {}
func (DrawStep) isCommand()            {}
func (CommitDrawToField) isCommand()   {}
func (SelectDrawMatch) isCommand()     {}
func (CheckTurn) isCommand()           {}
func (ResolveKoiKoi) isCommand()       {}
func (StartNextRound) isCommand()      {}
func (ReadyNextRound) isCommand()      {}
func (RestartGame) isCommand()         {}

type commandEnvelope struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeCommand serializes a command as its wire envelope.
func EncodeCommand(cmd Command) (json.RawMessage, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command payload: %w", err)
	}

	raw, err := json.Marshal(commandEnvelope{Tag: cmd.Tag(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command envelope: %w", err)
	}

	return raw, nil
}

// DecodeCommand parses a wire envelope back into a typed command. Unknown
// tags and unparsable payloads are rejected, never guessed at.
func DecodeCommand(raw json.RawMessage) (Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	var cmd Command
	switch env.Tag {
	case TagPlayHandCard:
		cmd = &PlayHandCard{}
	case TagSelectHandMatch:
		cmd = &SelectHandMatch{}
	case TagCancelHandSelection:
		cmd = &CancelHandSelection{}
	case TagDrawStep:
		cmd = &DrawStep{}
	case TagCommitDrawToField:
		cmd = &CommitDrawToField{}
	case TagSelectDrawMatch:
		cmd = &SelectDrawMatch{}
	case TagCheckTurn:
		cmd = &CheckTurn{}
	case TagResolveKoiKoi:
		cmd = &ResolveKoiKoi{}
	case TagStartNextRound:
		cmd = &StartNextRound{}
	case TagReadyNextRound:
		cmd = &ReadyNextRound{}
	case TagRestartGame:
		cmd = &RestartGame{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Tag)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
		}
	}

	return deref(cmd), nil
}

// deref flattens the decoded pointer back to the value form Apply matches on.
func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *PlayHandCard:
		return *c
	case *SelectHandMatch:
		return *c
	case *CancelHandSelection:
		return *c
	case *DrawStep:
		return *c
	case *CommitDrawToField:
		return *c
	case *SelectDrawMatch:
		return *c
	case *CheckTurn:
		return *c
	case *ResolveKoiKoi:
		return *c
	case *StartNextRound:
		return *c
	case *ReadyNextRound:
		return *c
	case *RestartGame:
		return *c
	default:
		return cmd
	}
}

// phaseTable is the static phase requirement per command tag.
var phaseTable = map[string][]entity.Phase{
	TagPlayHandCard:        {entity.PhaseSelectHandCard},
	TagSelectHandMatch:     {entity.PhaseSelectFieldMatch},
	TagCancelHandSelection: {entity.PhaseSelectFieldMatch},
	TagDrawStep:            {entity.PhaseDrawingDeck},
	TagCommitDrawToField:   {entity.PhaseDrawReveal},
	TagSelectDrawMatch:     {entity.PhaseSelectDrawMatch},
	TagCheckTurn:           {entity.PhaseCheckYaku},
	TagResolveKoiKoi:       {entity.PhaseKoiKoiDecision},
	TagStartNextRound:      {entity.PhaseRoundEnd},
	TagReadyNextRound:      {entity.PhaseRoundEnd},
	TagRestartGame: {
		entity.PhaseSelectHandCard, entity.PhaseSelectFieldMatch, entity.PhaseDrawingDeck,
		entity.PhaseDrawReveal, entity.PhaseSelectDrawMatch, entity.PhaseCheckYaku,
		entity.PhaseKoiKoiDecision, entity.PhaseRoundEnd, entity.PhaseGameOver,
	},
}

// PhaseAllows reports whether a command tag is legal in the given phase.
func PhaseAllows(tag string, phase entity.Phase) bool {
	for _, allowed := range phaseTable[tag] {
		if allowed == phase {
			return true
		}
	}
	return false
}

// IsOutOfTurn reports whether a command may come from the seat that does not
// hold the turn (the restart/ready/advance-round class).
func IsOutOfTurn(tag string) bool {
	switch tag {
	case TagRestartGame, TagReadyNextRound, TagStartNextRound:
		return true
	default:
		return false
	}
}
