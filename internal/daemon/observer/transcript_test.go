package observer

import (
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestObserver(t *testing.T) (*TranscriptObserver, *Settler, func(), *[]Event) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	o := NewTranscriptObserver("unused.jsonl", time.Hour, logrus.NewEntry(logger))
	settler := NewSettler(time.Hour, func(id, host, content string) {})
	events := &[]Event{}
	return o, settler, settler.Stop, events
}

func (o *TranscriptObserver) feed(settler *Settler, events *[]Event, recs ...transcriptRecord) {
	emit := func(ev Event) { *events = append(*events, ev) }
	for _, rec := range recs {
		o.handle(rec, settler, emit)
	}
}

func TestTranscriptTurnStartedEmitsWithExplicitID(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events, transcriptRecord{
		Event:          string(TurnStarted),
		ConversationID: "conv-1",
		Host:           "tab-1",
		Prompt:         "hello",
	})

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, TurnStarted, ev.Type)
	assert.Equal(t, "conv-1", ev.ID)
	assert.Equal(t, "tab-1", ev.HostContextID)
	assert.Equal(t, "hello", ev.Prompt)
}

func TestTranscriptTurnStartedGeneratesMissingID(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events, transcriptRecord{
		Event: string(TurnStarted),
		Host:  "tab-1",
	})

	require.Len(t, *events, 1)
	assert.Regexp(t, regexp.MustCompile(`^conv_\d+_[0-9a-z]{9}$`), (*events)[0].ID)
}

func TestTranscriptContentChangeResolvesActiveConversation(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events,
		transcriptRecord{Event: string(TurnStarted), ConversationID: "conv-1", Host: "tab-1"},
		transcriptRecord{Event: string(ContentChanged), Host: "tab-1", Content: "partial"},
	)

	require.Len(t, *events, 2)
	ev := (*events)[1]
	assert.Equal(t, ContentChanged, ev.Type)
	assert.Equal(t, "conv-1", ev.ID)
	assert.Equal(t, "partial", ev.Content)
}

func TestTranscriptContentChangeWithoutConversationIsDropped(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events, transcriptRecord{
		Event:   string(ContentChanged),
		Host:    "tab-unknown",
		Content: "orphan",
	})

	assert.Empty(t, *events)
}

func TestTranscriptExplicitSettleForgetsConversation(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events,
		transcriptRecord{Event: string(TurnStarted), ConversationID: "conv-1", Host: "tab-1"},
		transcriptRecord{Event: string(ContentSettled), Host: "tab-1", Content: "done"},
	)

	require.Len(t, *events, 2)
	assert.Equal(t, ContentSettled, (*events)[1].Type)
	assert.Equal(t, "conv-1", (*events)[1].ID)

	// A follow-up content change for the same host no longer resolves.
	o.feed(settler, events, transcriptRecord{
		Event:   string(ContentChanged),
		Host:    "tab-1",
		Content: "late",
	})
	assert.Len(t, *events, 2)
}

func TestTranscriptPageGoneEmitsAndForgets(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events,
		transcriptRecord{Event: string(TurnStarted), ConversationID: "conv-1", Host: "tab-1"},
		transcriptRecord{Event: string(PageGone), Host: "tab-1"},
	)

	require.Len(t, *events, 2)
	assert.Equal(t, PageGone, (*events)[1].Type)
	assert.Equal(t, "tab-1", (*events)[1].HostContextID)
	assert.Empty(t, o.activeByHost)
	assert.Empty(t, o.hostByID)
}

func TestTranscriptFocusEventsPassThrough(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events,
		transcriptRecord{Event: string(PageFocused), Host: "tab-1"},
		transcriptRecord{Event: string(PageBlurred), Host: "tab-1"},
	)

	require.Len(t, *events, 2)
	assert.Equal(t, PageFocused, (*events)[0].Type)
	assert.Equal(t, PageBlurred, (*events)[1].Type)
}

func TestTranscriptUnknownEventIgnored(t *testing.T) {
	o, settler, stop, events := newTestObserver(t)
	defer stop()

	o.feed(settler, events, transcriptRecord{Event: "page-resized", Host: "tab-1"})
	assert.Empty(t, *events)
}

func TestSynthesizedSettlesRunConcurrentlyWithNewRecords(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	o := NewTranscriptObserver("unused.jsonl", time.Hour, logrus.NewEntry(logger))

	var mu sync.Mutex
	settled := make(map[string]string)
	settler := NewSettler(time.Millisecond, func(id, host, content string) {
		mu.Lock()
		settled[id] = host
		mu.Unlock()
	})
	defer settler.Stop()

	emit := func(Event) {}

	// The tailing goroutine keeps mutating the observer's indexes while
	// earlier countdowns expire on their timer goroutines.
	const n = 50
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("conv-%d", i)
		host := fmt.Sprintf("tab-%d", i)
		o.handle(transcriptRecord{Event: string(TurnStarted), ConversationID: id, Host: host}, settler, emit)
		o.handle(transcriptRecord{Event: string(ContentChanged), Host: host, Content: "text"}, settler, emit)
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(settled) == n
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("tab-%d", i), settled[fmt.Sprintf("conv-%d", i)])
	}
}

func TestNewConversationIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewConversationID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
