package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobscraper-web/internal/events"
	"jobscraper-web/internal/session"
)

type EventsHandler struct {
	Sessions     *session.Manager
	PingInterval time.Duration
}

// ServeSSE streams one view's state and theme events. The view stays alive
// while the stream is open.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	v, release, err := h.Sessions.Attach(r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	defer release()

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := v.Events().Subscribe()
	defer v.Events().Unsubscribe(ch)

	reqID := RequestIDFrom(r.Context())
	send := func(msg string) {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
		flusher.Flush()
	}
	emit := func(typ string, data any) {
		msg, err := events.Encode(typ, 0, reqID, data)
		if err != nil {
			slog.Error("sse encode", "request_id", reqID, "view", v.ID(), "err", err)
			return
		}
		send(msg)
	}

	emit(events.TypePing, nil)
	// current state, so a late subscriber does not miss a settlement
	emit(events.TypeState, v.Snapshot())

	interval := h.PingInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ping := time.NewTicker(interval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			emit(events.TypePing, nil)
		case msg, ok := <-ch:
			if !ok {
				// view closed
				return
			}
			send(msg)
		}
	}
}
