package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/koikoi-backend/internal/config"
	"github.com/rocketscienceinc/koikoi-backend/internal/session"
)

type roomManager interface {
	Attach(ctx context.Context, hello session.HelloPayload) (int, session.StatePayload, error)
	HandleAction(ctx context.Context, action session.ActionPayload) ([]session.StatePayload, *session.ErrorPayload)
	Detach(roomID, peerID string)
	CleanupExpired()
}

// peerConn is one connected peer. The mutex serializes writes; gorilla
// permits only one concurrent writer per connection.
type peerConn struct {
	conn *websocket.Conn

	mu       sync.Mutex
	roomID   string
	peerID   string
	lastPong time.Time
}

type Server struct {
	logger  *slog.Logger
	manager roomManager

	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peerConn]struct{}

	handlers map[string]func(ctx context.Context, peer *peerConn, msg *session.Message)
}

func New(logger *slog.Logger, manager roomManager, conf config.Session) *Server {
	server := &Server{
		logger:            logger,
		manager:           manager,
		heartbeatInterval: conf.HeartbeatInterval,
		heartbeatTimeout:  conf.HeartbeatTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		peers:    make(map[*peerConn]struct{}),
		handlers: make(map[string]func(context.Context, *peerConn, *session.Message)),
	}

	server.handlers[session.MsgHello] = server.handleHello
	server.handlers[session.MsgAction] = server.handleAction
	server.handlers[session.MsgPing] = server.handlePing
	server.handlers[session.MsgPong] = server.handlePong

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go that.sweepLoop(ctx)

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	peer := &peerConn{conn: conn, lastPong: time.Now()}

	that.mu.Lock()
	that.peers[peer] = struct{}{}
	that.mu.Unlock()

	log.Info("WebSocket connection established")

	that.readLoop(ctx, peer)
}

// readLoop - processes messages from the peer until the connection dies.
// Malformed frames are dropped silently at the boundary.
func (that *Server) readLoop(ctx context.Context, peer *peerConn) {
	log := that.logger.With("method", "readLoop")

	defer that.dropPeer(peer)

	for {
		_, raw, err := peer.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		msg, err := session.DecodeMessage(raw)
		if err != nil {
			log.Debug("dropped malformed message", "error", err)
			continue
		}

		handler, ok := that.handlers[msg.Type]
		if !ok {
			log.Debug("dropped message of unknown type", "type", msg.Type)
			continue
		}

		handler(ctx, peer, msg)
	}
}

func (that *Server) dropPeer(peer *peerConn) {
	that.mu.Lock()
	delete(that.peers, peer)
	that.mu.Unlock()

	peer.mu.Lock()
	roomID, peerID := peer.roomID, peer.peerID
	peer.mu.Unlock()

	if roomID != "" {
		that.manager.Detach(roomID, peerID)
	}

	_ = peer.conn.Close()

	that.logger.With("method", "dropPeer").Info("peer disconnected", "peerID", peerID, "roomID", roomID)
}

// sweepLoop - pings every peer on the heartbeat interval, closes the ones
// whose last pong is too old and lets the room manager drop idle rooms.
func (that *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(that.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()

		that.mu.RLock()
		peers := make([]*peerConn, 0, len(that.peers))
		for peer := range that.peers {
			peers = append(peers, peer)
		}
		that.mu.RUnlock()

		for _, peer := range peers {
			peer.mu.Lock()
			stale := now.Sub(peer.lastPong) > that.heartbeatTimeout
			peer.mu.Unlock()

			if stale {
				_ = peer.conn.Close()
				continue
			}

			that.send(peer, session.MsgPing, session.PingPayload{T: now.UnixMilli()})
		}

		that.manager.CleanupExpired()
	}
}

func (that *Server) send(peer *peerConn, msgType string, payload any) {
	log := that.logger.With("method", "send")

	frame, err := session.EncodeMessage(msgType, payload)
	if err != nil {
		log.Error("failed to encode message", "type", msgType, "error", err)
		return
	}

	peer.mu.Lock()
	defer peer.mu.Unlock()

	if err = peer.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		log.Error("failed to write message", "type", msgType, "error", err)
	}
}

// broadcast - sends a snapshot to every peer attached to the room.
func (that *Server) broadcast(roomID string, snapshot session.StatePayload) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for peer := range that.peers {
		peer.mu.Lock()
		inRoom := peer.roomID == roomID
		peer.mu.Unlock()

		if inRoom {
			that.send(peer, session.MsgState, snapshot)
		}
	}
}
