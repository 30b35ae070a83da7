package models

// EventType identifies a daemon-to-UI broadcast message.
type EventType string

const (
	EventConversationStarted     EventType = "conversation-started"
	EventConversationUpdated     EventType = "conversation-updated"
	EventConversationCompleted   EventType = "conversation-completed"
	EventConversationInterrupted EventType = "conversation-interrupted"
	EventPlayNotificationSound   EventType = "play-notification-sound"
	EventInitialSnapshot         EventType = "initial-snapshot"
	EventConfigReload            EventType = "config-reload"
)

// Event is a state-change message fanned out to attached UI surfaces.
// Delivery is at-most-once and best-effort: a surface that attaches
// mid-stream reconciles from the initial snapshot it received on attach.
//
// Conversation is a partial record for live updates; Snapshot is only
// populated on initial-snapshot messages.
type Event struct {
	Type         EventType       `json:"type"`
	Conversation *Conversation   `json:"conversation,omitempty"`
	Snapshot     []*Conversation `json:"snapshot,omitempty"`
	ConfigFile   string          `json:"config_file,omitempty"`
}

// Ack is the response to a direct UI request (delete, edited-content
// save, template save). Failures carry a reason; callers needing
// durability must check Success.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
