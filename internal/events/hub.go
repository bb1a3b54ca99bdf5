// Package events fans stage-change notifications out to connected pipeline
// boards over WebSocket, so an open kanban view reflects moves made
// elsewhere without polling.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/models"
)

// Hub tracks subscribed WebSocket connections and broadcasts events to them.
// The stream is one-way: subscribers only listen.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Subscribe registers a connection for broadcasts
func (h *Hub) Subscribe(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()

	slog.Info("pipeline board subscribed", "subscribers", total)
}

// Unsubscribe removes a connection; the caller owns closing it
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	total := len(h.conns)
	h.mu.Unlock()

	slog.Info("pipeline board unsubscribed", "subscribers", total)
}

// PublishStageChange broadcasts a stage-change event to every subscriber.
// Connections that fail to accept the write are dropped.
func (h *Hub) PublishStageChange(event models.StageChangeEvent) {
	payload, err := json.Marshal(map[string]any{
		"type": "stage.changed",
		"data": event,
	})
	if err != nil {
		slog.Error("failed to marshal stage-change event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Debug("dropping dead pipeline subscriber", "error", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Subscribers returns the current subscriber count
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
