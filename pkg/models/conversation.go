// Package models defines the shared data structures for the replywatch
// daemon, its clients, and the panel UI.
package models

import "time"

// Status is the lifecycle state of a conversation.
type Status string

const (
	// StatusInProgress means the assistant reply is still streaming.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the reply settled and no further content is expected.
	StatusCompleted Status = "completed"
	// StatusInterrupted means the owning page closed or navigated away mid-reply.
	StatusInterrupted Status = "interrupted"
)

// Conversation is one user-prompt-to-assistant-reply cycle observed on a
// chat page. The daemon's store is the single writer; clients receive
// copies via snapshots and broadcast events.
type Conversation struct {
	ID            string    `json:"id" yaml:"id"`
	HostContextID string    `json:"host_context_id" yaml:"host_context_id"`
	Status        Status    `json:"status" yaml:"status"`
	Prompt        string    `json:"prompt" yaml:"prompt"`
	Content       string    `json:"content" yaml:"content"`
	EditedContent *string   `json:"edited_content,omitempty" yaml:"edited_content,omitempty"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
}

// DisplayContent returns the user's edited override when present,
// otherwise the latest observed content.
func (c *Conversation) DisplayContent() string {
	if c.EditedContent != nil {
		return *c.EditedContent
	}
	return c.Content
}

// Clone returns a deep copy so callers can hand records across goroutine
// boundaries without sharing the store's memory.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	if c.EditedContent != nil {
		edited := *c.EditedContent
		cp.EditedContent = &edited
	}
	return &cp
}
