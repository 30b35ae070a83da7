package models

import "time"

// PromptTemplate is a reusable prompt saved from the panel's prompts tab.
// Templates share the daemon's storage document but have no lifecycle
// beyond create/edit/delete/pin-toggle.
type PromptTemplate struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Pinned    bool      `json:"pinned" yaml:"pinned"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
