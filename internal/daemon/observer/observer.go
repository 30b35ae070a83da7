// Package observer abstracts how page activity is detected. Observers
// emit a small set of coarse events; the detection mechanism behind them
// (transcript tailing, polling, network interception) is swappable
// without touching the core.
package observer

import "context"

// EventType identifies an observer-to-store event.
type EventType string

const (
	// TurnStarted means a new user-prompt-to-reply cycle began.
	TurnStarted EventType = "turn-started"
	// ContentChanged carries the latest wholesale snapshot of the reply text.
	ContentChanged EventType = "content-changed"
	// ContentSettled means the reply stayed quiet long enough to count as done.
	ContentSettled EventType = "content-settled"
	// PageFocused means a host context came to the foreground.
	PageFocused EventType = "page-focused"
	// PageBlurred means a host context left the foreground.
	PageBlurred EventType = "page-blurred"
	// PageNavigating means a host context began a navigation or reload.
	PageNavigating EventType = "page-navigating"
	// PageGone means a host context closed.
	PageGone EventType = "page-gone"
)

// Event is one coarse observation reported by an observer.
type Event struct {
	Type          EventType
	ID            string
	HostContextID string
	Prompt        string
	Content       string
}

// Observer is a background worker that watches page activity and emits
// events. Implementations own their completion debounce: a quiet period
// with no content changes produces a ContentSettled event.
type Observer interface {
	// Name returns the observer's name for logging.
	Name() string

	// Run starts the observer. It should block until context is canceled.
	// It emits events via the events channel.
	Run(ctx context.Context, events chan<- Event) error
}
