package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/koikoi-backend/internal/apperror"
	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
	"github.com/rocketscienceinc/koikoi-backend/internal/repository"
	"github.com/rocketscienceinc/koikoi-backend/internal/session"
)

const (
	defaultMaxRounds = 12
	botPeerID        = "bot"
	botSeat          = entity.SeatTwo
	maxBotSteps      = 64
)

type checkpointRepo interface {
	Save(ctx context.Context, checkpoint *repository.Checkpoint) error
	Load(ctx context.Context, roomID, role string) (*repository.Checkpoint, error)
	Clear(ctx context.Context, roomID, role string) error
}

type botService interface {
	NextCommand(state *entity.KoiKoiGameState, seat int) (koikoi.Command, error)
}

// Room binds one authoritative host session to its attached peers.
type Room struct {
	ID       string
	Host     *session.Host
	GameType string

	seats      [2]string
	attached   map[string]bool
	emptySince time.Time
}

// RoomManager owns every live room. It is the single writer in front of each
// host session; the mutex only serializes the transport callbacks feeding it.
type RoomManager struct {
	logger      *slog.Logger
	checkpoints checkpointRepo
	bot         botService

	rebuildAfter time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRoomManager(logger *slog.Logger, checkpoints checkpointRepo, bot botService, rebuildAfter time.Duration) *RoomManager {
	return &RoomManager{
		logger:       logger,
		checkpoints:  checkpoints,
		bot:          bot,
		rebuildAfter: rebuildAfter,
		rooms:        make(map[string]*Room),
	}
}

// Attach seats a peer in a room, creating the room or rebuilding it from its
// checkpoint when needed, and returns the seat plus the snapshot that
// resynchronizes the peer.
func (that *RoomManager) Attach(ctx context.Context, hello session.HelloPayload) (int, session.StatePayload, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.getOrCreateRoom(ctx, hello)
	if err != nil {
		return 0, session.StatePayload{}, err
	}

	seat, err := that.assignSeat(room, hello.PeerID)
	if err != nil {
		return 0, session.StatePayload{}, err
	}

	room.Host.SetPlayerIdentity(seat, hello.PeerID, "", false)
	room.attached[hello.PeerID] = true
	room.emptySince = time.Time{}

	that.checkpoint(ctx, room)

	return seat, room.Host.Snapshot(), nil
}

// HandleAction runs one action through the room's host. On success it returns
// the resulting snapshot plus any follow-up snapshots produced by the bot
// seat, each already checkpointed.
func (that *RoomManager) HandleAction(ctx context.Context, action session.ActionPayload) ([]session.StatePayload, *session.ErrorPayload) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "HandleAction", "roomID", action.RoomID)

	room, ok := that.rooms[action.RoomID]
	if !ok {
		return nil, &session.ErrorPayload{
			RoomID: action.RoomID, Code: session.CodeUnknown, Message: apperror.ErrRoomNotFound.Error(),
		}
	}

	snapshot, errPayload := room.Host.HandleAction(action)
	if errPayload != nil {
		return nil, errPayload
	}

	that.checkpoint(ctx, room)
	snapshots := []session.StatePayload{snapshot}

	if room.GameType == session.GameTypeBot {
		botSnapshots, err := that.runBotTurns(ctx, room)
		if err != nil {
			log.Error("bot turn failed", "error", err)
		}
		snapshots = append(snapshots, botSnapshots...)
	}

	return snapshots, nil
}

// Detach marks a peer gone. The room object lingers for the soft-wait window
// so a quick reconnect lands on the same host; CleanupExpired drops it later
// and leaves the checkpoint as the only resume path.
func (that *RoomManager) Detach(roomID, peerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(room.attached, peerID)
	if len(room.attached) == 0 {
		room.emptySince = time.Now()
	}
}

// CleanupExpired drops rooms whose peers have all been gone past the rebuild
// timeout. A later hello rebuilds the room from its checkpoint.
func (that *RoomManager) CleanupExpired() {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "CleanupExpired")

	for id, room := range that.rooms {
		if room.emptySince.IsZero() || time.Since(room.emptySince) < that.rebuildAfter {
			continue
		}

		delete(that.rooms, id)
		log.Info("dropped idle room", "roomID", id)
	}
}

// RoomSnapshot returns the current snapshot of a live room.
func (that *RoomManager) RoomSnapshot(roomID string) (session.StatePayload, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return session.StatePayload{}, apperror.ErrRoomNotFound
	}

	return room.Host.Snapshot(), nil
}

func (that *RoomManager) getOrCreateRoom(ctx context.Context, hello session.HelloPayload) (*Room, error) {
	log := that.logger.With("method", "getOrCreateRoom", "roomID", hello.RoomID)

	if room, ok := that.rooms[hello.RoomID]; ok {
		return room, nil
	}

	if checkpoint, err := that.checkpoints.Load(ctx, hello.RoomID, repository.RoleHost); err == nil {
		room := that.rebuildRoom(hello.RoomID, checkpoint)
		log.Info("room rebuilt from checkpoint", "version", checkpoint.Version)
		return room, nil
	} else if !errors.Is(err, repository.ErrCheckpointNotFound) {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	gameType := hello.GameType
	if gameType == "" {
		gameType = session.GameTypeDuo
	}

	state, err := koikoi.NewGame(entity.DefaultRules(), defaultMaxRounds, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	room := &Room{
		ID:       hello.RoomID,
		Host:     session.NewHost(hello.RoomID, state),
		GameType: gameType,
		attached: make(map[string]bool),
	}

	if gameType == session.GameTypeBot {
		room.seats[botSeat] = botPeerID
		room.Host.SetPlayerIdentity(botSeat, botPeerID, "Bot", true)
	}

	that.rooms[hello.RoomID] = room
	log.Info("room created", "gameType", gameType)

	return room, nil
}

func (that *RoomManager) rebuildRoom(roomID string, checkpoint *repository.Checkpoint) *Room {
	gameType := session.GameTypeDuo
	if checkpoint.State.Players[botSeat].IsBot {
		gameType = session.GameTypeBot
	}

	room := &Room{
		ID:       roomID,
		Host:     session.RestoreHost(roomID, checkpoint.State, checkpoint.Version),
		GameType: gameType,
		attached: make(map[string]bool),
	}

	for seat := range checkpoint.State.Players {
		room.seats[seat] = checkpoint.State.Players[seat].ID
	}

	that.rooms[roomID] = room
	return room
}

func (that *RoomManager) assignSeat(room *Room, peerID string) (int, error) {
	for seat, occupant := range room.seats {
		if occupant == peerID {
			return seat, nil
		}
	}

	for seat, occupant := range room.seats {
		if occupant == "" {
			room.seats[seat] = peerID
			return seat, nil
		}
	}

	return 0, apperror.ErrRoomFull
}

// runBotTurns lets the bot seat act until the turn comes back to the human.
// The step cap bounds a round where the bot captures repeatedly.
func (that *RoomManager) runBotTurns(ctx context.Context, room *Room) ([]session.StatePayload, error) {
	var snapshots []session.StatePayload

	for step := 0; step < maxBotSteps; step++ {
		state := room.Host.State()
		if state.Phase == entity.PhaseGameOver {
			break
		}

		botMayAct := state.CurrentPlayerIndex == botSeat ||
			(state.Phase == entity.PhaseRoundEnd && !state.ReadyNextRound[botSeat])
		if !botMayAct {
			break
		}

		cmd, err := that.bot.NextCommand(state, botSeat)
		if err != nil {
			return snapshots, fmt.Errorf("failed to pick bot command: %w", err)
		}

		raw, err := koikoi.EncodeCommand(cmd)
		if err != nil {
			return snapshots, fmt.Errorf("failed to encode bot command: %w", err)
		}

		snapshot, errPayload := room.Host.HandleAction(session.ActionPayload{
			RoomID:   room.ID,
			ActionID: uuid.NewString(),
			From:     botSeat,
			Command:  raw,
		})
		if errPayload != nil {
			return snapshots, fmt.Errorf("bot action rejected: %s", errPayload.Message)
		}

		that.checkpoint(ctx, room)
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (that *RoomManager) checkpoint(ctx context.Context, room *Room) {
	err := that.checkpoints.Save(ctx, &repository.Checkpoint{
		RoomID:  room.ID,
		Role:    repository.RoleHost,
		Version: room.Host.Version(),
		State:   room.Host.State(),
	})
	if err != nil {
		that.logger.With("method", "checkpoint").Error("failed to save checkpoint", "roomID", room.ID, "error", err)
	}
}
