package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gabriel-abramovich/claude-plan-reviewer/internal/watcher"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The UI dev server runs on a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope is the wire shape pushed to subscribers. It carries identifiers
// only; clients re-fetch plans or comments rather than trusting the payload.
type wsEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Path string `json:"path"`
		ID   string `json:"id"`
	} `json:"data"`
}

func envelope(ev watcher.Event) wsEnvelope {
	var e wsEnvelope
	e.Type = string(ev.Type)
	e.Data.Path = ev.Path
	e.Data.ID = ev.PlanID
	return e
}

// handleWebSocket upgrades the connection and streams change events to it
// until either side goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}

	events, cancel := s.watcher.Subscribe()
	s.log.Info("client connected")

	go writePump(conn, events, cancel)
	go readPump(conn, cancel, s)
}

// writePump forwards change events to the client and pings it periodically
// to detect dead connections.
func writePump(conn *websocket.Conn, events <-chan watcher.Event, cancel func()) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg, err := json.Marshal(envelope(ev))
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection; clients send nothing meaningful, but the
// read loop is what notices a closed socket.
func readPump(conn *websocket.Conn, cancel func(), s *Server) {
	defer func() {
		cancel()
		conn.Close()
		s.log.Info("client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
