// Package daemon provides a client interface for interacting with the
// replywatch daemon (replywatchd) over its unix socket.
package daemon

import (
	"context"

	"github.com/replywatch/replywatch/pkg/models"
)

// Client defines the interface for interacting with the daemon.
type Client interface {
	// GetConversations returns the full conversation snapshot.
	GetConversations(ctx context.Context) ([]*models.Conversation, error)

	// DeleteConversation removes a conversation by id. The ack is
	// definite: deletion is request/response, never broadcast.
	DeleteConversation(ctx context.Context, id string) (models.Ack, error)

	// SetEditedContent stores a user override for a conversation's
	// display text. Callers needing durability must check the ack.
	SetEditedContent(ctx context.Context, id, content string) (models.Ack, error)

	// ClearEditedContent removes the user override.
	ClearEditedContent(ctx context.Context, id string) (models.Ack, error)

	// ListPrompts returns all prompt templates.
	ListPrompts(ctx context.Context) ([]*models.PromptTemplate, error)

	// CreatePrompt adds a new prompt template.
	CreatePrompt(ctx context.Context, title, content string) (*models.PromptTemplate, error)

	// UpdatePrompt replaces a template's title and content.
	UpdatePrompt(ctx context.Context, id, title, content string) (models.Ack, error)

	// DeletePrompt removes a template.
	DeletePrompt(ctx context.Context, id string) (models.Ack, error)

	// TogglePromptPin flips a template's pinned flag.
	TogglePromptPin(ctx context.Context, id string) (models.Ack, error)

	// Attach establishes the named long-lived channel for a UI surface
	// ("sidepanel" or "index"). The first message on the returned channel
	// is the initial snapshot; live events follow.
	Attach(ctx context.Context, clientName string) (<-chan models.Event, error)

	// StreamEvents subscribes to the best-effort SSE broadcast.
	StreamEvents(ctx context.Context) (<-chan models.Event, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}
