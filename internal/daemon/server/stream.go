package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/replywatch/replywatch/pkg/models"
)

// handleStream provides Server-Sent Events (SSE) for real-time state
// updates. Delivery is at-most-once and best-effort; a surface that
// attaches mid-stream is made whole by the initial snapshot line.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	// Ensure the connection supports flushing
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe to store updates
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// Send initial ping to confirm connection
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client connected")

	// Send the full snapshot immediately so the client has data right away
	snapshot := models.Event{
		Type:     models.EventInitialSnapshot,
		Snapshot: s.store.Snapshot(),
	}
	if data, err := json.Marshal(snapshot); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal event")
				continue
			}
			// SSE format: "data: {json}\n\n"
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

var upgrader = websocket.Upgrader{
	// The socket is local-only; there is no cross-origin surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleAttach is the named long-lived attach channel for UI surfaces
// ("sidepanel" or "index"). The server pushes the full conversation set
// once on attach, then relays live events over the same connection. The
// snapshot is the surface's sole mechanism for initial state; it does
// not poll.
func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	client := r.URL.Query().Get("client")
	switch client {
	case "sidepanel", "index":
	default:
		http.Error(w, "unknown client name", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.WithField("client", client).Debug("Surface attached")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// Attach-time snapshot: authoritative state as of this moment.
	// Events broadcast before this point were legitimately missed.
	snapshot := models.Event{
		Type:     models.EventInitialSnapshot,
		Snapshot: s.store.Snapshot(),
	}
	if err := conn.WriteJSON(snapshot); err != nil {
		s.logger.WithError(err).Debug("Failed to send initial snapshot")
		return
	}

	// Reader goroutine: the surface never sends application messages,
	// but reading drains control frames and detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			s.logger.WithField("client", client).Debug("Surface detached")
			return
		case ev := <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.WithError(err).Debug("Failed to relay event; dropping surface")
				return
			}
		}
	}
}
