package httpfront

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harborlabs/boost/internal/boost/session"
	"github.com/harborlabs/boost/internal/httputil"
	"github.com/harborlabs/boost/internal/logging"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEventsWS implements GET /events/{id}/ws: outbound frames are the
// session's listener events forwarded as JSON text frames; inbound frames
// are handed to Session.PublishInbound, which only logs them. Grounded in
// the teacher's internal/realtime Client readPump/writePump shape.
func (f *Front) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	id := httputil.PathVar(r, "id")
	sess, ok := f.sessions.Get(id)
	if !ok {
		httputil.NotFound(w, "unknown session")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.WithContext(r.Context()).Errorf("httpfront: websocket upgrade: %v", err)
		return
	}

	listener := sess.Listen()
	done := make(chan struct{})

	go wsWritePump(conn, listener, done)
	wsReadPump(r, conn, sess, done)
}

// wsWritePump forwards every SSE-framed chunk on listener to conn as a
// text frame, stripped of its "data: "/"\n\n" envelope, plus periodic
// pings. It returns once listener closes or a write fails.
func wsWritePump(conn *websocket.Conn, listener <-chan []byte, done chan struct{}) {
	ticker := time.NewTicker(wsPingEvery)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case chunk, open := <-listener:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !open {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, stripSSEEnvelope(chunk)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsReadPump reads inbound client frames and passes each to
// Session.PublishInbound until the connection closes or done fires.
func wsReadPump(r *http.Request, conn *websocket.Conn, sess *session.Session, done chan struct{}) {
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		select {
		case <-done:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var data any
		if err := json.Unmarshal(msg, &data); err != nil {
			data = string(msg)
		}
		sess.PublishInbound(r.Context(), data)
	}
}

// stripSSEEnvelope trims the "data: " prefix and trailing blank line off
// one SSE line, leaving the bare JSON (or "[DONE]") payload for the
// WebSocket text frame.
func stripSSEEnvelope(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n\n"))
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimPrefix(line, []byte("data: "))
	return line
}
