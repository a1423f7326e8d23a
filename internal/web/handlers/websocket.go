package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketHandler streams report changes over a WebSocket. The stream is
// one-way: client messages are read only to notice pongs and closes.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler. allowedOrigins are
// accepted next to same-host and localhost origins.
func NewWebSocketHandler(allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     middleware.OriginChecker(allowedOrigins),
		},
	}
}

// WSMessage is one frame sent to the client.
type WSMessage struct {
	Type  string          `json:"type"`
	Event *report.Event   `json:"event,omitempty"`
	State *ReportResponse `json:"state,omitempty"`
}

// Serve upgrades the connection, sends a snapshot frame, then one frame per
// report event.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("WebSocket: upgrade failed: %v", err)
		return
	}

	eventCh := rep.AddListener()
	state := reportState(rep)

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, eventCh, &state, closed)
	rep.RemoveListener(eventCh)
	<-closed
}

// readPump discards client messages and keeps the read deadline alive on
// pongs. It closes done when the client goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket: read error: %v", err)
			}
			return
		}
	}
}

// writePump sends the initial state and forwards events until the client
// disconnects or a write fails.
func writePump(conn *websocket.Conn, events <-chan report.Event, state *ReportResponse, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	if err := writeJSON(conn, WSMessage{Type: "snapshot", State: state}); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := writeJSON(conn, WSMessage{Type: "event", Event: &event}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
