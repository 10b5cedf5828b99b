package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teamdraw/teamdraw-go/internal/api/response"
	"github.com/teamdraw/teamdraw-go/internal/model"
	"github.com/teamdraw/teamdraw-go/internal/notifier"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
)

// Time between keepalive pings
const pingPeriod = 15 * time.Second

// EventsHandler streams registry change events over SSE
type EventsHandler struct {
	registry *registry.Service
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(reg *registry.Service, n *notifier.Notifier, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{registry: reg, notifier: n, logger: logger}
}

// Stream handles GET /api/v1/events.
// Every event carries the full participant snapshot, so a client that misses
// intermediate events still converges on the current state.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Subscribe before sending the initial snapshot so no change between the
	// two can be missed
	sub := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(sub)

	// Send the current state immediately so new observers don't wait for the
	// next mutation
	snapshot, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("initial snapshot failed", slog.Any("error", err))
		http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := writeSSE(w, string(model.ChangeSnapshot), response.SnapshotFromModel(snapshot)); err != nil {
		return
	}
	flusher.Flush()

	// Create ticker for keepalive
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				// Notifier closed
				return
			}
			if err := writeSSE(w, string(event.Kind), response.SnapshotFromModel(event.Snapshot)); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// writeSSE writes a single SSE frame with a JSON data payload
func writeSSE(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
