package session

import (
	"github.com/google/uuid"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
)

// Guest is the follower role: a read replica of the host's state. It never
// mutates its copy except by adopting a strictly newer authoritative
// snapshot, wholesale.
type Guest struct {
	roomID  string
	seat    int
	state   *entity.KoiKoiGameState
	version uint64
}

func NewGuest(roomID string, seat int) *Guest {
	return &Guest{roomID: roomID, seat: seat}
}

func (that *Guest) RoomID() string { return that.roomID }

func (that *Guest) Seat() int { return that.seat }

func (that *Guest) Version() uint64 { return that.version }

func (that *Guest) State() *entity.KoiKoiGameState { return that.state }

// ApplyState adopts a broadcast snapshot. Snapshots at or below the current
// version are discarded: the host is sole authority and versions give a total
// order, so last-writer-wins needs no merging.
func (that *Guest) ApplyState(snapshot StatePayload) bool {
	if snapshot.RoomID != that.roomID {
		return false
	}
	if snapshot.Version <= that.version {
		return false
	}

	that.state = snapshot.State
	that.version = snapshot.Version
	return true
}

// Restore seeds the replica from a local checkpoint before reconnecting.
func (that *Guest) Restore(state *entity.KoiKoiGameState, version uint64) {
	that.state = state
	that.version = version
}

// BuildAction wraps a command into an action envelope with a fresh unique id,
// so the host can de-duplicate at-least-once deliveries.
func (that *Guest) BuildAction(cmd koikoi.Command) (ActionPayload, error) {
	raw, err := koikoi.EncodeCommand(cmd)
	if err != nil {
		return ActionPayload{}, err
	}

	return ActionPayload{
		RoomID:   that.roomID,
		ActionID: uuid.NewString(),
		From:     that.seat,
		Command:  raw,
	}, nil
}
