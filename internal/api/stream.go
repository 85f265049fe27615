package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ai-sales-agent/internal/call"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The stream carries no state-changing commands; cross-origin viewers
	// (the demo UI) are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const streamWriteTimeout = 10 * time.Second

// handleStream upgrades to a websocket and feeds the caller the call's
// transcript so far followed by live turn events. The connection closes
// after the event that ends the call.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("id")
	if !s.authorized(w, r, callID) {
		return
	}

	session, err := s.orch.Lookup(callID)
	if err != nil {
		writeTurnError(w, err)
		return
	}

	// Subscribe before snapshotting so no turn falls between the two.
	events, unsubscribe := s.orch.Subscribe(callID)
	defer unsubscribe()
	snap := session.Snapshot()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "call_id", callID, "err", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(evt call.TurnEvent) bool {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(evt); err != nil {
			return false
		}
		return true
	}

	// Replay what already happened. Seen timestamps let us skip the same
	// turns if they also arrive as live events.
	var lastReplayed time.Time
	for _, t := range snap.Turns {
		evt := call.TurnEvent{CallID: callID, Speaker: t.Speaker, Text: t.Text, At: t.At}
		if !send(evt) {
			return
		}
		lastReplayed = t.At
	}
	if !snap.Active {
		return
	}

	for {
		select {
		case <-done:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.At.Before(lastReplayed) && !evt.CallEnded {
				continue
			}
			if !send(evt) {
				return
			}
			if evt.CallEnded {
				return
			}
		}
	}
}
