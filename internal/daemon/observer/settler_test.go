package observer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settleRecorder struct {
	mu    sync.Mutex
	fired []string
}

func (r *settleRecorder) record(id, host, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, id+"@"+host+":"+content)
}

func (r *settleRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fired...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSettlerFiresAfterQuietPeriod(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(20*time.Millisecond, rec.record)
	defer s.Stop()

	s.Touch("conv_1", "tab-1", "final text")

	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	assert.Equal(t, []string{"conv_1@tab-1:final text"}, rec.snapshot())
}

func TestSettlerRestartsOnTouch(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(50*time.Millisecond, rec.record)
	defer s.Stop()

	s.Touch("conv_1", "tab-1", "v1")
	time.Sleep(25 * time.Millisecond)
	s.Touch("conv_1", "tab-1", "v2")
	time.Sleep(25 * time.Millisecond)
	// 50ms elapsed since the first touch but only 25ms since the second:
	// nothing may have fired yet.
	require.Empty(t, rec.snapshot())

	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	assert.Equal(t, []string{"conv_1@tab-1:v2"}, rec.snapshot())
}

func TestSettlerCancel(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(20*time.Millisecond, rec.record)
	defer s.Stop()

	s.Touch("conv_1", "tab-1", "text")
	s.Cancel("conv_1")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestSettlerTracksConversationsIndependently(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(20*time.Millisecond, rec.record)
	defer s.Stop()

	s.Touch("conv_1", "tab-1", "a")
	s.Touch("conv_2", "tab-2", "b")
	s.Cancel("conv_1")

	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	assert.Equal(t, []string{"conv_2@tab-2:b"}, rec.snapshot())
}

func TestSettlerStopSilencesEverything(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(20*time.Millisecond, rec.record)

	s.Touch("conv_1", "tab-1", "text")
	s.Stop()
	s.Touch("conv_2", "tab-2", "after stop")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestSettlerStaleCountdownCannotSettleEarly(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(30*time.Millisecond, rec.record)
	defer s.Stop()

	// First countdown armed, then superseded before it runs. A timer that
	// already fired when its Stop raced the re-arm reaches fire with the
	// old generation; it must be discarded.
	s.Touch("conv_1", "tab-1", "v1")
	s.Touch("conv_1", "tab-1", "v2")
	s.fire("conv_1", 1)
	require.Empty(t, rec.snapshot())

	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	assert.Equal(t, []string{"conv_1@tab-1:v2"}, rec.snapshot())
}

func TestSettlerFireAfterCancelIsQuiet(t *testing.T) {
	rec := &settleRecorder{}
	s := NewSettler(30*time.Millisecond, rec.record)
	defer s.Stop()

	s.Touch("conv_1", "tab-1", "text")
	s.Cancel("conv_1")
	s.fire("conv_1", 1)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
