// Package server provides the HTTP server for the replywatch daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/replywatch/replywatch/internal/daemon/store"
	"github.com/replywatch/replywatch/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// RunningConfig holds the active configuration being used by the daemon.
// This is exposed via the /api/config endpoint so clients can verify what
// config is active.
type RunningConfig struct {
	QuietPeriod   time.Duration `json:"quiet_period"`
	PreviewLength int           `json:"preview_length"`
	AlertsEnabled bool          `json:"alerts_enabled"`
	SoundEnabled  bool          `json:"sound_enabled"`
	Transcripts   []string      `json:"transcripts"`
	StartedAt     time.Time     `json:"started_at"`
}

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger        *logrus.Entry
	server        *http.Server
	store         *store.Store
	runningConfig *RunningConfig
}

// New creates a new Server instance.
func New(logger *logrus.Entry) *Server {
	return &Server{
		logger: logger,
	}
}

// SetStore sets the conversation store for the server.
func (s *Server) SetStore(st *store.Store) {
	s.store = st
}

// SetRunningConfig sets the running configuration for the server.
func (s *Server) SetRunningConfig(cfg *RunningConfig) {
	s.runningConfig = cfg
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Set restrictive permissions on socket
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return s.server.Serve(listener)
}

// Handler builds the daemon's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Conversation API
	mux.HandleFunc("GET /api/conversations", s.handleGetConversations)
	mux.HandleFunc("DELETE /api/conversations/{id}", s.handleDeleteConversation)
	mux.HandleFunc("PUT /api/conversations/{id}/edited", s.handleSetEditedContent)
	mux.HandleFunc("DELETE /api/conversations/{id}/edited", s.handleClearEditedContent)

	// Prompt template API
	mux.HandleFunc("GET /api/prompts", s.handleListPrompts)
	mux.HandleFunc("POST /api/prompts", s.handleCreatePrompt)
	mux.HandleFunc("PUT /api/prompts/{id}", s.handleUpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{id}", s.handleDeletePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/pin", s.handleTogglePromptPin)

	// Notification sound payload
	mux.HandleFunc("GET /api/sound", s.handleGetSound)
	mux.HandleFunc("PUT /api/sound", s.handleSetSound)

	// Live channels and config
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /api/attach", s.handleAttach)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)

	return mux
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// handleGetConversations returns the full conversation snapshot as JSON.
func (s *Server) handleGetConversations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleDeleteConversation removes a conversation and acknowledges the
// requester directly. Nothing is broadcast; the requesting surface drops
// the record on this ack.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	found, err := s.store.DeleteConversation(id)
	if err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	if !found {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: "conversation not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}

// handleSetEditedContent stores a user override for a conversation's
// display text.
func (s *Server) handleSetEditedContent(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	if err := s.store.SetEditedContent(id, req.Content); err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}

// handleClearEditedContent removes the user override.
func (s *Server) handleClearEditedContent(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	if err := s.store.ClearEditedContent(id); err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.runningConfig)
}
