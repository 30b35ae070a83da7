package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replywatch/replywatch/internal/daemon/notify"
	"github.com/replywatch/replywatch/internal/daemon/observer"
	"github.com/replywatch/replywatch/internal/daemon/store"
	"github.com/replywatch/replywatch/internal/daemon/storage"
	"github.com/replywatch/replywatch/pkg/models"
)

// scriptedObserver emits a fixed sequence of events, then blocks until
// the context is canceled.
type scriptedObserver struct {
	events []observer.Event
}

func (o *scriptedObserver) Name() string { return "scripted" }

func (o *scriptedObserver) Run(ctx context.Context, events chan<- observer.Event) error {
	for _, ev := range o.events {
		select {
		case events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

type countingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (a *countingAlerter) Alert(title, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, message)
	return nil
}

func (a *countingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

type testRig struct {
	engine  *Engine
	store   *store.Store
	focus   *notify.FocusTracker
	alerter *countingAlerter
	cancel  context.CancelFunc
	done    chan struct{}
}

func startEngine(t *testing.T, events []observer.Event) *testRig {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	entry := logrus.NewEntry(logger)

	st, err := store.New(storage.New(filepath.Join(t.TempDir(), "state.json")), entry)
	require.NoError(t, err)

	focus := notify.NewFocusTracker()
	alerter := &countingAlerter{}
	dispatcher := notify.New(focus, alerter, st, notify.Options{
		AlertsEnabled: true,
		SoundEnabled:  true,
	}, entry)

	eng := New(st, dispatcher, focus, entry)
	eng.Register(&scriptedObserver{events: events})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Start(ctx)
		close(done)
	}()

	rig := &testRig{engine: eng, store: st, focus: focus, alerter: alerter, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("engine did not stop after cancel")
		}
	})
	return rig
}

func waitForStatus(t *testing.T, st *store.Store, id string, status models.Status) *models.Conversation {
	t.Helper()
	var found *models.Conversation
	require.Eventually(t, func() bool {
		for _, c := range st.Snapshot() {
			if c.ID == id && c.Status == status {
				found = c
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	return found
}

func TestEngineAppliesConversationLifecycle(t *testing.T) {
	rig := startEngine(t, []observer.Event{
		{Type: observer.TurnStarted, ID: "conv-1", HostContextID: "tab-1", Prompt: "how do channels work"},
		{Type: observer.ContentChanged, ID: "conv-1", Content: "Channels are"},
		{Type: observer.ContentChanged, ID: "conv-1", Content: "Channels are typed conduits."},
		{Type: observer.ContentSettled, ID: "conv-1", Content: "Channels are typed conduits."},
	})

	conv := waitForStatus(t, rig.store, "conv-1", models.StatusCompleted)
	assert.Equal(t, "how do channels work", conv.Prompt)
	assert.Equal(t, "Channels are typed conduits.", conv.Content)

	// Owner was never foregrounded, so completion raises a desktop alert.
	require.Eventually(t, func() bool {
		return rig.alerter.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngineSkipsAlertForForegroundedOwner(t *testing.T) {
	rig := startEngine(t, []observer.Event{
		{Type: observer.TurnStarted, ID: "conv-1", HostContextID: "tab-1", Prompt: "hi"},
		{Type: observer.PageFocused, HostContextID: "tab-1"},
		{Type: observer.ContentSettled, ID: "conv-1", Content: "hello"},
	})

	waitForStatus(t, rig.store, "conv-1", models.StatusCompleted)

	// The user is looking at the page; no alert should fire.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rig.alerter.count())

	host, err := rig.focus.ForegroundHost()
	require.NoError(t, err)
	assert.Equal(t, "tab-1", host)
}

func TestEngineRepeatedSettleAlertsOnce(t *testing.T) {
	rig := startEngine(t, []observer.Event{
		{Type: observer.TurnStarted, ID: "conv-1", HostContextID: "tab-1", Prompt: "hi"},
		{Type: observer.ContentSettled, ID: "conv-1", Content: "first"},
		{Type: observer.ContentSettled, ID: "conv-1", Content: "first plus a late tail"},
	})

	waitForStatus(t, rig.store, "conv-1", models.StatusCompleted)

	require.Eventually(t, func() bool {
		return rig.alerter.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The second settle refreshes content but must not alert again.
	require.Eventually(t, func() bool {
		for _, c := range rig.store.Snapshot() {
			if c.ID == "conv-1" && c.Content == "first plus a late tail" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rig.alerter.count())
}

func TestEnginePageGoneInterruptsAndClearsFocus(t *testing.T) {
	rig := startEngine(t, []observer.Event{
		{Type: observer.TurnStarted, ID: "conv-1", HostContextID: "tab-1", Prompt: "one"},
		{Type: observer.TurnStarted, ID: "conv-2", HostContextID: "tab-2", Prompt: "two"},
		{Type: observer.PageFocused, HostContextID: "tab-1"},
		{Type: observer.PageGone, HostContextID: "tab-1"},
	})

	waitForStatus(t, rig.store, "conv-1", models.StatusInterrupted)

	// Only tab-1's conversation is affected.
	for _, c := range rig.store.Snapshot() {
		if c.ID == "conv-2" {
			assert.Equal(t, models.StatusInProgress, c.Status)
		}
	}

	require.Eventually(t, func() bool {
		host, err := rig.focus.ForegroundHost()
		return err == nil && host == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngineIgnoresUnknownEventType(t *testing.T) {
	rig := startEngine(t, []observer.Event{
		{Type: observer.EventType("something-new"), ID: "conv-1"},
		{Type: observer.TurnStarted, ID: "conv-1", HostContextID: "tab-1", Prompt: "hi"},
	})

	conv := waitForStatus(t, rig.store, "conv-1", models.StatusInProgress)
	assert.Equal(t, "hi", conv.Prompt)
}
