package store

import (
	"github.com/google/uuid"
	rwerrors "github.com/replywatch/replywatch/errors"
	"github.com/replywatch/replywatch/pkg/models"
)

// Prompt templates share the storage document with conversations but are
// persisted as an independent collection: a template write failure never
// blocks or corrupts conversation persistence.

// ListPrompts returns copies of all prompt templates.
func (s *Store) ListPrompts() []*models.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.PromptTemplate, 0, len(s.prompts))
	for _, p := range s.prompts {
		cp := *p
		result = append(result, &cp)
	}
	return result
}

// CreatePrompt adds a new template and persists the collection.
func (s *Store) CreatePrompt(title, content string) (*models.PromptTemplate, error) {
	s.mu.Lock()
	prompt := &models.PromptTemplate{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Timestamp: s.now(),
	}
	s.prompts = append(s.prompts, prompt)
	snapshot := s.promptsLocked()
	s.mu.Unlock()

	cp := *prompt
	return &cp, s.persister.SavePrompts(snapshot)
}

// UpdatePrompt replaces a template's title and content.
func (s *Store) UpdatePrompt(id, title, content string) error {
	s.mu.Lock()
	prompt := s.findPromptLocked(id)
	if prompt == nil {
		s.mu.Unlock()
		return rwerrors.PromptNotFound(id)
	}
	prompt.Title = title
	prompt.Content = content
	prompt.Timestamp = s.now()
	snapshot := s.promptsLocked()
	s.mu.Unlock()

	return s.persister.SavePrompts(snapshot)
}

// DeletePrompt removes a template.
func (s *Store) DeletePrompt(id string) (bool, error) {
	s.mu.Lock()
	found := false
	for i, p := range s.prompts {
		if p.ID == id {
			s.prompts = append(s.prompts[:i], s.prompts[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false, nil
	}
	snapshot := s.promptsLocked()
	s.mu.Unlock()

	return true, s.persister.SavePrompts(snapshot)
}

// TogglePromptPin flips a template's pinned flag and returns the new value.
func (s *Store) TogglePromptPin(id string) (bool, error) {
	s.mu.Lock()
	prompt := s.findPromptLocked(id)
	if prompt == nil {
		s.mu.Unlock()
		return false, rwerrors.PromptNotFound(id)
	}
	prompt.Pinned = !prompt.Pinned
	pinned := prompt.Pinned
	snapshot := s.promptsLocked()
	s.mu.Unlock()

	return pinned, s.persister.SavePrompts(snapshot)
}

func (s *Store) findPromptLocked(id string) *models.PromptTemplate {
	for _, p := range s.prompts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) promptsLocked() []*models.PromptTemplate {
	result := make([]*models.PromptTemplate, 0, len(s.prompts))
	for _, p := range s.prompts {
		cp := *p
		result = append(result, &cp)
	}
	return result
}

// CustomSound returns the stored notification sound payload, if any.
func (s *Store) CustomSound() (string, error) {
	doc, err := s.persister.Load()
	if err != nil {
		return "", err
	}
	return doc.CustomSound, nil
}

// SetCustomSound stores a base64-encoded notification sound payload.
// An empty string clears it.
func (s *Store) SetCustomSound(encoded string) error {
	return s.persister.SaveCustomSound(encoded)
}
