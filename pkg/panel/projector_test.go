package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replywatch/replywatch/pkg/models"
)

func TestApplySnapshotReplacesAll(t *testing.T) {
	p := New()
	p.Apply(models.Event{
		Type:         models.EventConversationStarted,
		Conversation: &models.Conversation{ID: "stale"},
	})

	p.Apply(models.Event{
		Type: models.EventInitialSnapshot,
		Snapshot: []*models.Conversation{
			{ID: "conv_1", Status: models.StatusCompleted},
			{ID: "conv_2", Status: models.StatusInProgress},
		},
	})

	assert.Equal(t, 2, p.Len())
	_, ok := p.Get("stale")
	assert.False(t, ok)
}

func TestReconcileInsertsUnknownWithDefaults(t *testing.T) {
	p := New()

	// An update for an id never seen (missed started event).
	p.Apply(models.Event{
		Type:         models.EventConversationUpdated,
		Conversation: &models.Conversation{ID: "conv_1", Content: "partial"},
	})

	conv, ok := p.Get("conv_1")
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, conv.Status)
	assert.Equal(t, "partial", conv.Content)
	assert.False(t, conv.Timestamp.IsZero())
}

func TestReconcileMergesPartialFields(t *testing.T) {
	p := New()
	p.Apply(models.Event{
		Type: models.EventConversationStarted,
		Conversation: &models.Conversation{
			ID:            "conv_1",
			HostContextID: "tab-1",
			Status:        models.StatusInProgress,
			Prompt:        "the prompt",
			Timestamp:     time.Now(),
		},
	})

	// Partial update: only content. Prompt and host must survive.
	p.Apply(models.Event{
		Type:         models.EventConversationUpdated,
		Conversation: &models.Conversation{ID: "conv_1", Content: "reply text"},
	})

	conv, ok := p.Get("conv_1")
	require.True(t, ok)
	assert.Equal(t, "the prompt", conv.Prompt)
	assert.Equal(t, "tab-1", conv.HostContextID)
	assert.Equal(t, "reply text", conv.Content)
}

func TestReconcileReplacesContentWithEmpty(t *testing.T) {
	p := New()
	p.Apply(models.Event{
		Type: models.EventConversationStarted,
		Conversation: &models.Conversation{
			ID:            "conv_1",
			HostContextID: "tab-1",
			Prompt:        "the prompt",
			Content:       "streamed so far",
		},
	})

	// The page replaced the reply wholesale with empty text. The mirror
	// must follow; only the untouched fields survive.
	p.Apply(models.Event{
		Type:         models.EventConversationUpdated,
		Conversation: &models.Conversation{ID: "conv_1"},
	})

	conv, ok := p.Get("conv_1")
	require.True(t, ok)
	assert.Empty(t, conv.Content)
	assert.Equal(t, "the prompt", conv.Prompt)
	assert.Equal(t, "tab-1", conv.HostContextID)
}

func TestReconcileCarriesEditedContent(t *testing.T) {
	p := New()
	edited := "edited"
	p.Apply(models.Event{
		Type:         models.EventConversationStarted,
		Conversation: &models.Conversation{ID: "conv_1"},
	})
	p.Apply(models.Event{
		Type:         models.EventConversationUpdated,
		Conversation: &models.Conversation{ID: "conv_1", EditedContent: &edited},
	})

	conv, ok := p.Get("conv_1")
	require.True(t, ok)
	require.NotNil(t, conv.EditedContent)
	assert.Equal(t, "edited", *conv.EditedContent)

	// A later event without the field must not clear it.
	p.Apply(models.Event{
		Type:         models.EventConversationCompleted,
		Conversation: &models.Conversation{ID: "conv_1", Status: models.StatusCompleted},
	})
	conv, _ = p.Get("conv_1")
	require.NotNil(t, conv.EditedContent)
}

func TestTombstonePreventsResurrection(t *testing.T) {
	p := New()
	p.Apply(models.Event{
		Type:         models.EventConversationStarted,
		Conversation: &models.Conversation{ID: "conv_1"},
	})

	p.RemoveAcknowledged("conv_1")
	_, ok := p.Get("conv_1")
	require.False(t, ok)

	// A stray in-flight broadcast must not bring it back.
	p.Apply(models.Event{
		Type:         models.EventConversationCompleted,
		Conversation: &models.Conversation{ID: "conv_1", Status: models.StatusCompleted},
	})
	_, ok = p.Get("conv_1")
	assert.False(t, ok)
}

func TestSnapshotClearsTombstones(t *testing.T) {
	p := New()
	p.RemoveAcknowledged("conv_1")

	// The daemon still reports it; the snapshot is authoritative.
	p.Apply(models.Event{
		Type:     models.EventInitialSnapshot,
		Snapshot: []*models.Conversation{{ID: "conv_1"}},
	})

	_, ok := p.Get("conv_1")
	assert.True(t, ok)
}

func TestConversationsOrderedByRecency(t *testing.T) {
	p := New()
	base := time.Now()
	p.Apply(models.Event{
		Type: models.EventInitialSnapshot,
		Snapshot: []*models.Conversation{
			{ID: "old", Timestamp: base.Add(-time.Hour)},
			{ID: "newest", Timestamp: base},
			{ID: "middle", Timestamp: base.Add(-time.Minute)},
		},
	})

	ordered := p.Conversations()
	require.Len(t, ordered, 3)
	assert.Equal(t, "newest", ordered[0].ID)
	assert.Equal(t, "middle", ordered[1].ID)
	assert.Equal(t, "old", ordered[2].ID)
}

func TestIgnoredEventTypes(t *testing.T) {
	p := New()
	p.Apply(models.Event{Type: models.EventPlayNotificationSound})
	p.Apply(models.Event{Type: models.EventConfigReload, ConfigFile: "replywatch.yml"})
	assert.Equal(t, 0, p.Len())
}
