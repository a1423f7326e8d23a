package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// EventsHandler streams report changes over Server-Sent Events.
type EventsHandler struct {
	keepAlive time.Duration
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler() *EventsHandler {
	return &EventsHandler{keepAlive: constants.SSEKeepAlive}
}

// Stream sends a "snapshot" event with the full report, then one event per
// change until the client disconnects. A client that falls behind loses
// events and should reload the snapshot.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe before the snapshot so no change falls between the two.
	eventCh := rep.AddListener()
	defer rep.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "snapshot", reportState(rep))

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			flusher.Flush()
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, string(event.Type), event)
		}
	}
}

// sendSSEEvent writes one SSE frame and flushes it.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}
