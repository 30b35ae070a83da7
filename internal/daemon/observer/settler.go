package observer

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long a reply must stay unchanged before the
// settler declares it complete.
const DefaultQuietPeriod = 2 * time.Second

// countdown is the state armed by one Touch. The settle callback receives
// the host alongside the content so it never has to reach back into the
// caller's bookkeeping from the timer goroutine.
type countdown struct {
	host    string
	content string
	gen     uint64
}

// Settler turns a stream of content changes into settle signals: a
// cancellable countdown per conversation, restarted on every change,
// firing the settle callback on expiry. This debounce is the only
// timeout in the system.
type Settler struct {
	quiet    time.Duration
	onSettle func(id, host, content string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]countdown
	stopped bool
}

// NewSettler creates a Settler with the given quiet period. A zero or
// negative quiet period uses DefaultQuietPeriod.
func NewSettler(quiet time.Duration, onSettle func(id, host, content string)) *Settler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Settler{
		quiet:    quiet,
		onSettle: onSettle,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]countdown),
	}
}

// Touch records the latest content for a conversation and restarts its
// settle countdown. Stop on a timer that already fired is a no-op, so
// each countdown carries the generation it was armed with and fire
// discards anything stale.
func (s *Settler) Touch(id, host, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	gen := s.pending[id].gen + 1
	s.pending[id] = countdown{host: host, content: content, gen: gen}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}
	s.timers[id] = time.AfterFunc(s.quiet, func() {
		s.fire(id, gen)
	})
}

// Cancel drops the countdown for a conversation without firing, e.g.
// when the page reported an explicit settle or went away.
func (s *Settler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	delete(s.pending, id)
}

// Stop cancels all countdowns. The settler cannot be reused.
func (s *Settler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.pending = make(map[string]countdown)
}

func (s *Settler) fire(id string, gen uint64) {
	s.mu.Lock()
	cd, ok := s.pending[id]
	if !ok || cd.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	delete(s.pending, id)
	s.mu.Unlock()

	s.onSettle(id, cd.host, cd.content)
}
