package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// StreamHandler pushes session snapshots to the browser over SSE. The
// first event is the current snapshot so a client that connects late still
// sees the full transcript.
func (app *App) StreamHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	if err := writeEvent(w, "transcript", app.Session.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	clientGone := r.Context().Done()

	for {
		select {
		case update, ok := <-app.Session.Updates():
			if !ok {
				return
			}
			if err := writeEvent(w, update.Type, update.Data); err != nil {
				app.Logger.Debug("dropping stream client", zap.Error(err))
				return
			}
			flusher.Flush()

		case <-clientGone:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
