package server

import (
	"encoding/json"
	"net/http"

	"github.com/replywatch/replywatch/pkg/models"
)

type promptRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// handleListPrompts returns all prompt templates as JSON.
func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.ListPrompts())
}

// handleCreatePrompt adds a new prompt template.
func (s *Server) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prompt, err := s.store.CreatePrompt(req.Title, req.Content)
	if err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, prompt)
}

// handleUpdatePrompt replaces a template's title and content.
func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.store.UpdatePrompt(r.PathValue("id"), req.Title, req.Content); err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}

// handleDeletePrompt removes a template.
func (s *Server) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	found, err := s.store.DeletePrompt(r.PathValue("id"))
	if err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	if !found {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: "prompt template not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}

// handleTogglePromptPin flips a template's pinned flag.
func (s *Server) handleTogglePromptPin(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	pinned, err := s.store.TogglePromptPin(r.PathValue("id"))
	if err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true, "pinned": pinned})
}

// handleGetSound returns the stored custom notification sound payload.
func (s *Server) handleGetSound(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	sound, err := s.store.CustomSound()
	if err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"sound": sound})
}

// handleSetSound stores a base64-encoded notification sound payload.
// An empty payload clears the stored sound.
func (s *Server) handleSetSound(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "store not initialized", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Sound string `json:"sound"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.store.SetCustomSound(req.Sound); err != nil {
		s.writeJSON(w, http.StatusOK, models.Ack{Success: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, models.Ack{Success: true})
}
