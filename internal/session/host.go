package session

import (
	"fmt"

	"github.com/rocketscienceinc/koikoi-backend/internal/apperror"
	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
)

const recentActionWindow = 64

// Host owns the canonical game state of a room plus the version counter that
// orders every broadcast. All mutation flows through HandleAction; everything
// else only reads.
type Host struct {
	roomID  string
	state   *entity.KoiKoiGameState
	version uint64
	seen    *dedupeRing
}

func NewHost(roomID string, state *entity.KoiKoiGameState) *Host {
	return &Host{
		roomID:  roomID,
		state:   state,
		version: 1,
		seen:    newDedupeRing(recentActionWindow),
	}
}

// RestoreHost rebuilds a host from a checkpointed state and version. The
// de-dup window starts empty: any in-flight pre-crash action re-applies,
// which is safe because the checkpoint already contains its effect or the
// engine rejects it as a no-op.
func RestoreHost(roomID string, state *entity.KoiKoiGameState, version uint64) *Host {
	host := NewHost(roomID, state)
	host.version = version
	return host
}

func (that *Host) RoomID() string { return that.roomID }

func (that *Host) Version() uint64 { return that.version }

// State exposes the canonical state for read-only callers (bot strategies,
// seat bookkeeping). Callers must not mutate it.
func (that *Host) State() *entity.KoiKoiGameState { return that.state }

// Snapshot is the full-state broadcast sent after every mutation and whenever
// a peer (re)attaches.
func (that *Host) Snapshot() StatePayload {
	return StatePayload{
		RoomID:  that.roomID,
		Version: that.version,
		State:   that.state,
	}
}

// HandleAction validates and applies one remote command. Validation order is
// fixed: room, turn ownership, phase legality, then the game rules themselves.
// Any failure leaves state and version untouched and yields a typed error for
// the sender alone. A replayed action id returns the current snapshot again
// without re-applying anything.
func (that *Host) HandleAction(action ActionPayload) (StatePayload, *ErrorPayload) {
	if action.RoomID != that.roomID {
		return StatePayload{}, that.errorReply(CodeUnknown, apperror.ErrWrongRoom.Error())
	}

	if that.seen.Seen(action.ActionID) {
		snapshot := that.Snapshot()
		snapshot.LastActionID = action.ActionID
		return snapshot, nil
	}

	cmd, err := koikoi.DecodeCommand(action.Command)
	if err != nil {
		return StatePayload{}, that.errorReply(CodeIllegalAction, err.Error())
	}

	next, code, message := applyCommand(that.state, action.From, cmd)
	if code != "" {
		return StatePayload{}, that.errorReply(code, message)
	}

	that.state = next
	that.version++
	that.seen.Add(action.ActionID)

	snapshot := that.Snapshot()
	snapshot.LastActionID = action.ActionID
	return snapshot, nil
}

// SetPlayerIdentity records who occupies a seat. It bumps the version so the
// change reaches replicas with the next broadcast.
func (that *Host) SetPlayerIdentity(seat int, id, name string, isBot bool) {
	if seat != entity.SeatOne && seat != entity.SeatTwo {
		return
	}
	if that.state.Players[seat].ID == id {
		return
	}

	next := that.state.Clone()
	next.Players[seat].ID = id
	if name != "" {
		next.Players[seat].Name = name
	}
	next.Players[seat].IsBot = isBot

	that.state = next
	that.version++
}

func (that *Host) errorReply(code, message string) *ErrorPayload {
	return &ErrorPayload{RoomID: that.roomID, Code: code, Message: message}
}

// applyCommand is the one validate-then-apply core both roles share. The host
// runs it with full authority; a guest never runs it at all and instead waits
// for the resulting snapshot.
func applyCommand(state *entity.KoiKoiGameState, from int, cmd koikoi.Command) (*entity.KoiKoiGameState, string, string) {
	tag := cmd.Tag()

	if !koikoi.IsOutOfTurn(tag) && from != state.CurrentPlayerIndex {
		return nil, CodeOutOfTurn, apperror.ErrOutOfTurn.Error()
	}

	if !koikoi.PhaseAllows(tag, state.Phase) {
		return nil, CodeInvalidPhase, fmt.Sprintf("%s: %s", apperror.ErrInvalidPhase, state.Phase)
	}

	next, err := koikoi.Apply(state, cmd)
	if err != nil {
		return nil, CodeUnknown, err.Error()
	}

	if next == state {
		return nil, CodeIllegalAction, apperror.ErrIllegalAction.Error()
	}

	return next, "", ""
}
