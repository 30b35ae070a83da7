package notify

import "sync"

// FocusTracker is a ForegroundQuerier fed from page-focused observer
// events: the daemon has no direct window-system query, so it mirrors the
// observers' best-effort focus reports instead.
type FocusTracker struct {
	mu   sync.RWMutex
	host string
}

// NewFocusTracker creates an empty tracker (no host foregrounded).
func NewFocusTracker() *FocusTracker {
	return &FocusTracker{}
}

// SetForeground records the host context that just gained focus.
func (t *FocusTracker) SetForeground(hostContextID string) {
	t.mu.Lock()
	t.host = hostContextID
	t.mu.Unlock()
}

// ClearForeground records that a host context left the foreground.
// Only clears when the given host is the one currently tracked.
func (t *FocusTracker) ClearForeground(hostContextID string) {
	t.mu.Lock()
	if t.host == hostContextID {
		t.host = ""
	}
	t.mu.Unlock()
}

// ForegroundHost implements ForegroundQuerier.
func (t *FocusTracker) ForegroundHost() (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.host, nil
}
