// Package panel maintains a UI-local mirror of the daemon's conversation
// set, rebuilt purely from the attach-time snapshot and the subsequent
// broadcast stream — no shared memory with the store.
package panel

import (
	"sort"
	"sync"
	"time"

	"github.com/replywatch/replywatch/pkg/models"
)

// Projector reconstructs the store's logical state on the UI side. It
// tolerates partial-update messages, missed events before its snapshot,
// and events arriving out of the store's exact internal order.
type Projector struct {
	mu      sync.RWMutex
	records map[string]*models.Conversation
	// tombstones holds ids removed via a delete ack; a stray broadcast
	// for such an id must never resurrect the record.
	tombstones map[string]struct{}
	now        func() time.Time
}

// New creates an empty Projector.
func New() *Projector {
	return &Projector{
		records:    make(map[string]*models.Conversation),
		tombstones: make(map[string]struct{}),
		now:        time.Now,
	}
}

// Apply reconciles one incoming event. Snapshot events replace the whole
// collection; conversation events merge by id; everything else is
// ignored here (sound and config-reload cues are UI affordances handled
// by the surface itself).
func (p *Projector) Apply(ev models.Event) {
	switch ev.Type {
	case models.EventInitialSnapshot:
		p.replaceAll(ev.Snapshot)
	case models.EventConversationStarted,
		models.EventConversationUpdated,
		models.EventConversationCompleted,
		models.EventConversationInterrupted:
		if ev.Conversation != nil {
			p.reconcile(ev.Conversation)
		}
	}
}

// replaceAll installs an authoritative snapshot, clearing tombstones:
// anything the daemon still holds is real again.
func (p *Projector) replaceAll(snapshot []*models.Conversation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = make(map[string]*models.Conversation, len(snapshot))
	p.tombstones = make(map[string]struct{})
	for _, conv := range snapshot {
		p.records[conv.ID] = conv.Clone()
	}
}

// reconcile inserts or shallow-merges one record. Content is taken as-is
// (it is always a full snapshot of the reply text); for the other fields
// incoming non-zero values win and absent ones are preserved. Unknown
// ids are inserted with sensible defaults so a surface that missed the
// started event still converges.
func (p *Projector) reconcile(in *models.Conversation) {
	if in.ID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, deleted := p.tombstones[in.ID]; deleted {
		return
	}

	existing, ok := p.records[in.ID]
	if !ok {
		record := in.Clone()
		if record.Status == "" {
			record.Status = models.StatusInProgress
		}
		if record.Timestamp.IsZero() {
			record.Timestamp = p.now()
		}
		p.records[in.ID] = record
		return
	}

	if in.Status != "" {
		existing.Status = in.Status
	}
	if in.HostContextID != "" {
		existing.HostContextID = in.HostContextID
	}
	if in.Prompt != "" {
		existing.Prompt = in.Prompt
	}
	// Content is a wholesale snapshot of the reply text; an empty
	// incoming value is a replacement, not an absent field.
	existing.Content = in.Content
	if in.EditedContent != nil {
		edited := *in.EditedContent
		existing.EditedContent = &edited
	}
	if !in.Timestamp.IsZero() {
		existing.Timestamp = in.Timestamp
	}
}

// RemoveAcknowledged drops a record after the daemon acknowledged its
// deletion. This is the only removal path; broadcast events never
// delete, which prevents accidental mass-delete from a malformed
// message.
func (p *Projector) RemoveAcknowledged(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, id)
	p.tombstones[id] = struct{}{}
}

// Get returns a copy of one record.
func (p *Projector) Get(id string) (*models.Conversation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conv, ok := p.records[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Conversations returns copies of all records ordered by timestamp
// descending. Recency ordering is recomputed here at read time, not
// stored as rank.
func (p *Projector) Conversations() []*models.Conversation {
	p.mu.RLock()
	result := make([]*models.Conversation, 0, len(p.records))
	for _, conv := range p.records {
		result = append(result, conv.Clone())
	}
	p.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

// Len returns the number of live records.
func (p *Projector) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}
