package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/koikoi-backend/internal/entity"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint roles. Host and guest checkpoints are keyed per room; a local
// checkpoint covers non-networked play and is keyed by the local game id.
const (
	RoleHost  = "host"
	RoleGuest = "guest"
	RoleLocal = "local"
)

// Checkpoint is one durable resume point: the replicated state plus the
// version the peer had when it saved.
type Checkpoint struct {
	RoomID  string                  `json:"room_id"`
	Role    string                  `json:"role"`
	Version uint64                  `json:"version"`
	State   *entity.KoiKoiGameState `json:"state"`
	SavedAt time.Time               `json:"saved_at"`
}

type CheckpointRepository interface {
	Save(ctx context.Context, checkpoint *Checkpoint) error
	Load(ctx context.Context, roomID, role string) (*Checkpoint, error)
	Clear(ctx context.Context, roomID, role string) error
}

type dbCheckpoint struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckpointRepository stores checkpoints with a fixed expiry so stale
// resume points invalidate themselves.
func NewCheckpointRepository(client *redis.Client, ttl time.Duration) CheckpointRepository {
	return &dbCheckpoint{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbCheckpoint) Save(ctx context.Context, checkpoint *Checkpoint) error {
	checkpoint.SavedAt = time.Now().UTC()

	checkpointJSON, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("could not marshal checkpoint: %w", err)
	}

	key := checkpointKey(checkpoint.RoomID, checkpoint.Role)
	if err = that.client.Set(ctx, key, checkpointJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	return nil
}

// Load returns ErrCheckpointNotFound for missing, expired and malformed
// checkpoints alike; a malformed one is deleted so it never resurfaces.
func (that *dbCheckpoint) Load(ctx context.Context, roomID, role string) (*Checkpoint, error) {
	key := checkpointKey(roomID, role)

	response, err := that.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var checkpoint Checkpoint
	if err = json.Unmarshal([]byte(response), &checkpoint); err != nil {
		_ = that.client.Del(ctx, key).Err()
		return nil, ErrCheckpointNotFound
	}

	if checkpoint.State == nil {
		_ = that.client.Del(ctx, key).Err()
		return nil, ErrCheckpointNotFound
	}

	return &checkpoint, nil
}

func (that *dbCheckpoint) Clear(ctx context.Context, roomID, role string) error {
	if err := that.client.Del(ctx, checkpointKey(roomID, role)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	return nil
}

func checkpointKey(roomID, role string) string {
	return "checkpoint:" + roomID + ":" + role
}
