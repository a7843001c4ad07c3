package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/koikoi-backend/internal/config"
	"github.com/rocketscienceinc/koikoi-backend/internal/koikoi"
	"github.com/rocketscienceinc/koikoi-backend/internal/session"
)

var ErrNotConnected = errors.New("not connected")

// Client is the guest side of the protocol: it mirrors the host's state via
// broadcasts, sends commands as actions, and reconnects with a fixed delay
// when the connection or the heartbeat dies, resuming from its last version.
type Client struct {
	logger *slog.Logger
	url    string
	guest  *session.Guest
	peerID string

	retryDelay        time.Duration
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	// OnState fires after a strictly newer snapshot is adopted.
	OnState func(snapshot session.StatePayload)
	// OnError fires on a typed rejection addressed to this guest.
	OnError func(errPayload session.ErrorPayload)

	mu       sync.Mutex
	conn     *websocket.Conn
	lastPong time.Time
}

func NewClient(logger *slog.Logger, url, roomID, peerID string, seat int, conf config.Session) *Client {
	return &Client{
		logger:            logger,
		url:               url,
		guest:             session.NewGuest(roomID, seat),
		peerID:            peerID,
		retryDelay:        conf.GuestRetryDelay,
		heartbeatInterval: conf.HeartbeatInterval,
		heartbeatTimeout:  conf.HeartbeatTimeout,
	}
}

// Guest exposes the replica for reads.
func (that *Client) Guest() *session.Guest { return that.guest }

// Run dials, attaches and serves the connection until the context ends,
// redialing after the retry delay every time the connection drops.
func (that *Client) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	for ctx.Err() == nil {
		if err := that.serveOnce(ctx); err != nil {
			log.Info("connection lost, retrying", "error", err, "delay", that.retryDelay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(that.retryDelay):
		}
	}
}

func (that *Client) serveOnce(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, that.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	that.mu.Lock()
	that.conn = conn
	that.lastPong = time.Now()
	that.mu.Unlock()

	defer func() {
		that.mu.Lock()
		that.conn = nil
		that.mu.Unlock()
		_ = conn.Close()
	}()

	if err = that.sendHello(); err != nil {
		return err
	}

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go that.heartbeatLoop(heartbeatCtx, conn)

	return that.readLoop(conn)
}

func (that *Client) sendHello() error {
	hello := session.HelloPayload{
		RoomID: that.guest.RoomID(),
		PeerID: that.peerID,
	}
	if version := that.guest.Version(); version > 0 {
		hello.ResumeVersion = &version
	}

	return that.write(session.MsgHello, hello)
}

// Send submits a command to the host. A lost action is not retried here: a
// reconnect delivers a fresh authoritative snapshot that supersedes it.
func (that *Client) Send(cmd koikoi.Command) error {
	action, err := that.guest.BuildAction(cmd)
	if err != nil {
		return fmt.Errorf("failed to build action: %w", err)
	}

	return that.write(session.MsgAction, action)
}

func (that *Client) readLoop(conn *websocket.Conn) error {
	log := that.logger.With("method", "readLoop")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		msg, err := session.DecodeMessage(raw)
		if err != nil {
			log.Debug("dropped malformed message", "error", err)
			continue
		}

		switch msg.Type {
		case session.MsgState:
			that.handleState(msg.Payload)
		case session.MsgError:
			that.handleError(msg.Payload)
		case session.MsgPing:
			var ping session.PingPayload
			if json.Unmarshal(msg.Payload, &ping) == nil {
				_ = that.write(session.MsgPong, session.PongPayload{T: ping.T})
			}
		case session.MsgPong:
			that.mu.Lock()
			that.lastPong = time.Now()
			that.mu.Unlock()
		default:
			log.Debug("dropped message of unknown type", "type", msg.Type)
		}
	}
}

func (that *Client) handleState(payload json.RawMessage) {
	log := that.logger.With("method", "handleState")

	var snapshot session.StatePayload
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		log.Debug("dropped malformed state", "error", err)
		return
	}

	if err := snapshot.Validate(); err != nil {
		log.Debug("dropped invalid state", "error", err)
		return
	}

	if !that.guest.ApplyState(snapshot) {
		log.Debug("discarded stale snapshot", "version", snapshot.Version)
		return
	}

	if that.OnState != nil {
		that.OnState(snapshot)
	}
}

func (that *Client) handleError(payload json.RawMessage) {
	var errPayload session.ErrorPayload
	if err := json.Unmarshal(payload, &errPayload); err != nil {
		return
	}

	if that.OnError != nil {
		that.OnError(errPayload)
	}
}

// heartbeatLoop pings the host and force-closes the connection when pongs
// stop, which kicks Run into its reconnect path.
func (that *Client) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(that.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		that.mu.Lock()
		silent := time.Since(that.lastPong) > that.heartbeatTimeout
		that.mu.Unlock()

		if silent {
			_ = conn.Close()
			return
		}

		_ = that.write(session.MsgPing, session.PingPayload{T: time.Now().UnixMilli()})
	}
}

func (that *Client) write(msgType string, payload any) error {
	frame, err := session.EncodeMessage(msgType, payload)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.conn == nil {
		return ErrNotConnected
	}

	if err = that.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msgType, err)
	}

	return nil
}
