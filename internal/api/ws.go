package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// API-key auth guards the route; origins are not restricted here
		return true
	},
}

// handlePipelineWS upgrades the connection and streams stage-change events
// to it until the client hangs up. The read loop exists only to detect the
// disconnect; inbound messages are discarded.
func (s *Server) handlePipelineWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "events_unavailable", "live pipeline events are not available")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	s.hub.Subscribe(conn)
	defer func() {
		s.hub.Unsubscribe(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
