package httpfront

import (
	"net/http"

	"github.com/harborlabs/boost/internal/httputil"
	"github.com/harborlabs/boost/internal/logging"
)

// streamSSE drains ch to the client as Server-Sent Events, the same
// set-headers/flush-per-chunk shape the teacher's dev.LogStreamHandler
// uses for tailing a log file. ch already yields fully formatted
// "data: ...\n\n" lines (and the terminator), so this is a straight copy.
func (f *Front) streamSSE(w http.ResponseWriter, r *http.Request, ch <-chan []byte) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logging.WithContext(r.Context()).Error("httpfront: streaming not supported by ResponseWriter")
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case chunk, open := <-ch:
			if !open {
				return
			}
			if _, err := w.Write(chunk); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleEventsSSE implements GET /events/{id}: an SSE stream of listener
// events for a session that's already in flight (or was, recently).
func (f *Front) handleEventsSSE(w http.ResponseWriter, r *http.Request) {
	id := httputil.PathVar(r, "id")
	sess, ok := f.sessions.Get(id)
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}
	f.streamSSE(w, r, sess.Listen())
}
