package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rocketscienceinc/koikoi-backend/internal/session"
)

func (that *Server) handleHello(ctx context.Context, peer *peerConn, msg *session.Message) {
	log := that.logger.With("method", "handleHello")

	var hello session.HelloPayload
	if err := json.Unmarshal(msg.Payload, &hello); err != nil {
		log.Debug("dropped malformed hello", "error", err)
		return
	}

	if err := hello.Validate(); err != nil {
		log.Debug("dropped invalid hello", "error", err)
		return
	}

	seat, snapshot, err := that.manager.Attach(ctx, hello)
	if err != nil {
		log.Error("failed to attach peer", "roomID", hello.RoomID, "error", err)
		that.send(peer, session.MsgError, session.ErrorPayload{
			RoomID: hello.RoomID, Code: session.CodeUnknown, Message: err.Error(),
		})
		return
	}

	peer.mu.Lock()
	peer.roomID = hello.RoomID
	peer.peerID = hello.PeerID
	peer.lastPong = time.Now()
	peer.mu.Unlock()

	// A (re)attach resynchronizes the whole room, not just the newcomer.
	that.broadcast(hello.RoomID, snapshot)

	log.Info("peer attached", "roomID", hello.RoomID, "peerID", hello.PeerID, "seat", seat)
}

func (that *Server) handleAction(ctx context.Context, peer *peerConn, msg *session.Message) {
	log := that.logger.With("method", "handleAction")

	var action session.ActionPayload
	if err := json.Unmarshal(msg.Payload, &action); err != nil {
		log.Debug("dropped malformed action", "error", err)
		return
	}

	if err := action.Validate(); err != nil {
		log.Debug("dropped invalid action", "error", err)
		return
	}

	snapshots, errPayload := that.manager.HandleAction(ctx, action)
	if errPayload != nil {
		that.send(peer, session.MsgError, *errPayload)
		return
	}

	for _, snapshot := range snapshots {
		that.broadcast(action.RoomID, snapshot)
	}
}

func (that *Server) handlePing(_ context.Context, peer *peerConn, msg *session.Message) {
	var ping session.PingPayload
	if err := json.Unmarshal(msg.Payload, &ping); err != nil {
		return
	}

	that.send(peer, session.MsgPong, session.PongPayload{T: ping.T})
}

func (that *Server) handlePong(_ context.Context, peer *peerConn, msg *session.Message) {
	var pong session.PongPayload
	if err := json.Unmarshal(msg.Payload, &pong); err != nil {
		return
	}

	peer.mu.Lock()
	peer.lastPong = time.Now()
	peer.mu.Unlock()
}
