package panel

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// SequenceState manages state for multi-key sequences (e.g., gg, dd, yy).
// It tracks the current key buffer and handles timeout-based clearing.
type SequenceState struct {
	buffer     string
	lastUpdate time.Time
	timeout    time.Duration
}

// NewSequenceState creates a sequence state handler with a 1 second timeout.
func NewSequenceState() *SequenceState {
	return &SequenceState{timeout: time.Second}
}

// Update processes a key message and returns the current buffer.
// If the timeout has elapsed since the last key, the buffer is cleared first.
func (s *SequenceState) Update(msg tea.KeyMsg) string {
	if s.timeout > 0 && time.Since(s.lastUpdate) > s.timeout {
		s.buffer = ""
	}
	s.lastUpdate = time.Now()
	s.buffer += msg.String()
	return s.buffer
}

// Clear resets the sequence buffer. Call this after a successful match.
func (s *SequenceState) Clear() {
	s.buffer = ""
}

// IsPending returns true if there is content in the buffer.
func (s *SequenceState) IsPending() bool {
	return len(s.buffer) > 0
}

// matchesSequence checks if the buffer exactly equals one of the
// binding's keys.
func matchesSequence(buffer string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == buffer {
			return true
		}
	}
	return false
}

// prefixOfSequence reports whether the buffer is a strict prefix of any
// multi-key binding, meaning more input could still complete a match.
func prefixOfSequence(buffer string, bindings ...key.Binding) bool {
	for _, binding := range bindings {
		for _, k := range binding.Keys() {
			if len(k) > len(buffer) && k[:len(buffer)] == buffer {
				return true
			}
		}
	}
	return false
}
