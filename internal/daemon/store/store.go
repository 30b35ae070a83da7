// Package store is the single source of truth for conversation lifecycle
// state. It owns the state machine, the in-memory index, persistence, and
// pub/sub for real-time updates.
package store

import (
	"sync"
	"time"

	rwerrors "github.com/replywatch/replywatch/errors"
	"github.com/replywatch/replywatch/internal/daemon/storage"
	"github.com/replywatch/replywatch/pkg/models"
	"github.com/sirupsen/logrus"
)

// Store is the daemon's authoritative conversation index.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	order         []string // insertion order of conversation ids
	prompts       []*models.PromptTemplate
	subscribers   map[chan models.Event]struct{}
	persister     *storage.Store
	logger        *logrus.Entry
	now           func() time.Time
}

// New creates a Store backed by the given persister, hydrating the
// in-memory index from the persisted document.
func New(persister *storage.Store, logger *logrus.Entry) (*Store, error) {
	doc, err := persister.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{
		conversations: make(map[string]*models.Conversation, len(doc.Conversations)),
		subscribers:   make(map[chan models.Event]struct{}),
		persister:     persister,
		logger:        logger,
		now:           time.Now,
	}
	for _, conv := range doc.Conversations {
		s.conversations[conv.ID] = conv
		s.order = append(s.order, conv.ID)
	}
	s.prompts = doc.Prompts
	return s, nil
}

// BeginConversation creates an in_progress conversation for a turn-started
// event. It is idempotent by id: a collision cannot happen by construction
// (ids are generated once per turn by the observer), so an existing record
// is logged and returned unchanged. The operation always persists and
// always broadcasts conversation-started.
func (s *Store) BeginConversation(id, prompt, hostContextID string) (*models.Conversation, error) {
	s.mu.Lock()
	conv, exists := s.conversations[id]
	if exists {
		s.logger.WithField("id", id).Warn("Conversation id collision on begin; keeping existing record")
	} else {
		conv = &models.Conversation{
			ID:            id,
			HostContextID: hostContextID,
			Status:        models.StatusInProgress,
			Prompt:        prompt,
			Content:       "",
			Timestamp:     s.now(),
		}
		s.conversations[id] = conv
		s.order = append(s.order, id)
	}
	snapshot := s.snapshotLocked()
	record := conv.Clone()
	s.mu.Unlock()

	err := s.persister.SaveConversations(snapshot)
	s.broadcast(models.Event{Type: models.EventConversationStarted, Conversation: record})
	return record, err
}

// UpdateContent applies a content-changed event: wholesale replacement of
// the latest known assistant text. Unknown ids are a no-op that still
// acknowledges. Status is untouched; updates arrive only while streaming.
func (s *Store) UpdateContent(id, content string) (*models.Conversation, error) {
	s.mu.Lock()
	conv, exists := s.conversations[id]
	if !exists {
		s.mu.Unlock()
		return nil, nil
	}
	conv.Content = content
	conv.Timestamp = s.now()
	record := conv.Clone()
	s.mu.Unlock()

	s.broadcast(models.Event{Type: models.EventConversationUpdated, Conversation: record})
	return record, nil
}

// CompleteConversation applies a content-settled event. Unknown ids are a
// no-op. A non-empty content replaces the stored text. The returned
// completedNow flag is true only for the in_progress→completed edge, which
// is the sole trigger for the notification dispatcher; re-settling an
// already-completed conversation refreshes content and timestamp but is a
// status no-op.
func (s *Store) CompleteConversation(id, content string) (record *models.Conversation, completedNow bool, err error) {
	s.mu.Lock()
	conv, exists := s.conversations[id]
	if !exists {
		s.mu.Unlock()
		return nil, false, nil
	}
	completedNow = conv.Status == models.StatusInProgress
	conv.Status = models.StatusCompleted
	if content != "" {
		conv.Content = content
	}
	conv.Timestamp = s.now()
	snapshot := s.snapshotLocked()
	record = conv.Clone()
	s.mu.Unlock()

	err = s.persister.SaveConversations(snapshot)
	s.broadcast(models.Event{Type: models.EventConversationCompleted, Conversation: record})
	return record, completedNow, err
}

// MarkInterrupted transitions every in_progress conversation owned by the
// given host context to interrupted. Completed conversations and other
// hosts are untouched. One conversation-interrupted event is broadcast per
// affected conversation; persistence happens once after the batch.
func (s *Store) MarkInterrupted(hostContextID string) ([]*models.Conversation, error) {
	s.mu.Lock()
	var affected []*models.Conversation
	for _, id := range s.order {
		conv := s.conversations[id]
		if conv.HostContextID == hostContextID && conv.Status == models.StatusInProgress {
			conv.Status = models.StatusInterrupted
			conv.Timestamp = s.now()
			affected = append(affected, conv.Clone())
		}
	}
	var snapshot []*models.Conversation
	if len(affected) > 0 {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if len(affected) == 0 {
		return nil, nil
	}

	err := s.persister.SaveConversations(snapshot)
	for _, record := range affected {
		s.broadcast(models.Event{Type: models.EventConversationInterrupted, Conversation: record})
	}
	return affected, err
}

// DeleteConversation removes a conversation and persists immediately.
// Nothing is broadcast: deletion is acknowledged directly to the
// requesting surface, which removes the record on the ack.
func (s *Store) DeleteConversation(id string) (bool, error) {
	s.mu.Lock()
	_, exists := s.conversations[id]
	if !exists {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.conversations, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return true, s.persister.SaveConversations(snapshot)
}

// SetEditedContent stores a user override for a conversation's display
// text. It is orthogonal to status, never touches Content, and is not
// broadcast: edits are local-UI-driven and other surfaces reconcile on
// their next full fetch.
func (s *Store) SetEditedContent(id, text string) error {
	s.mu.Lock()
	conv, exists := s.conversations[id]
	if !exists {
		s.mu.Unlock()
		return rwerrors.ConversationNotFound(id)
	}
	conv.EditedContent = &text
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persister.SaveConversations(snapshot)
}

// ClearEditedContent removes the user override. Only an explicit user
// action clears an edit; incoming content updates never do.
func (s *Store) ClearEditedContent(id string) error {
	s.mu.Lock()
	conv, exists := s.conversations[id]
	if !exists {
		s.mu.Unlock()
		return rwerrors.ConversationNotFound(id)
	}
	conv.EditedContent = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persister.SaveConversations(snapshot)
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (*models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Snapshot returns copies of all conversations in insertion order.
// Display ordering (timestamp descending) is computed at render time.
func (s *Store) Snapshot() []*models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// LatestCompleted returns the most recently completed conversation, or
// nil when none exists. Used to focus the owning page on alert click.
func (s *Store) LatestCompleted() *models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Conversation
	for _, conv := range s.conversations {
		if conv.Status != models.StatusCompleted {
			continue
		}
		if latest == nil || conv.Timestamp.After(latest.Timestamp) {
			latest = conv
		}
	}
	if latest == nil {
		return nil
	}
	return latest.Clone()
}

func (s *Store) snapshotLocked() []*models.Conversation {
	result := make([]*models.Conversation, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.conversations[id].Clone())
	}
	return result
}

// Subscribe creates a new subscription channel for broadcast events.
func (s *Store) Subscribe() chan models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan models.Event, 100) // Buffered
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
	close(ch)
}

// Broadcast fans an event out to all subscribers. Delivery is
// at-most-once: a full or absent subscriber simply misses the message.
func (s *Store) Broadcast(ev models.Event) {
	s.broadcast(ev)
}

func (s *Store) broadcast(ev models.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}
