package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

// Message types of the wire envelope.
const (
	MsgHello  = "hello"
	MsgAction = "action"
	MsgState  = "state"
	MsgError  = "error"
	MsgPing   = "ping"
	MsgPong   = "pong"
)

// Error codes a host replies with. They map 1:1 onto the apperror sentinels.
const (
	CodeOutOfTurn     = "out_of_turn"
	CodeInvalidPhase  = "invalid_phase"
	CodeIllegalAction = "illegal_action"
	CodeUnknown       = "unknown"
)

// Room game types. A bot room seats the strategy service opposite the player.
const (
	GameTypeDuo = "duo"
	GameTypeBot = "bot"
)

var ErrMalformedMessage = errors.New("malformed message")

// Message is the wire envelope: one type tag plus payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type HelloPayload struct {
	RoomID        string  `json:"room_id"`
	PeerID        string  `json:"peer_id"`
	ResumeVersion *uint64 `json:"resume_version,omitempty"`
	GameType      string  `json:"game_type,omitempty"`
}

type ActionPayload struct {
	RoomID   string          `json:"room_id"`
	ActionID string          `json:"action_id"`
	From     int             `json:"from"`
	Command  json.RawMessage `json:"command"`
}

type StatePayload struct {
	RoomID       string                  `json:"room_id"`
	Version      uint64                  `json:"version"`
	State        *entity.KoiKoiGameState `json:"state"`
	LastActionID string                  `json:"last_action_id,omitempty"`
}

type ErrorPayload struct {
	RoomID  string `json:"room_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PingPayload struct {
	T int64 `json:"t"`
}

type PongPayload struct {
	T int64 `json:"t"`
}

// DecodeMessage parses a raw frame into an envelope. Callers validate the
// payload shape per type and drop anything malformed without replying.
func DecodeMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return &msg, nil
}

// EncodeMessage builds a wire frame from a typed payload.
func EncodeMessage(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}

	frame, err := json.Marshal(Message{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", msgType, err)
	}

	return frame, nil
}

func (that *HelloPayload) Validate() error {
	if that.RoomID == "" || that.PeerID == "" {
		return fmt.Errorf("%w: hello requires room_id and peer_id", ErrMalformedMessage)
	}
	switch that.GameType {
	case "", GameTypeDuo, GameTypeBot:
	default:
		return fmt.Errorf("%w: unknown game type %q", ErrMalformedMessage, that.GameType)
	}
	return nil
}

func (that *ActionPayload) Validate() error {
	if that.RoomID == "" || that.ActionID == "" || len(that.Command) == 0 {
		return fmt.Errorf("%w: action requires room_id, action_id and command", ErrMalformedMessage)
	}
	if that.From != entity.SeatOne && that.From != entity.SeatTwo {
		return fmt.Errorf("%w: action from unknown seat %d", ErrMalformedMessage, that.From)
	}
	return nil
}

func (that *StatePayload) Validate() error {
	if that.RoomID == "" || that.State == nil {
		return fmt.Errorf("%w: state requires room_id and state", ErrMalformedMessage)
	}
	return nil
}
