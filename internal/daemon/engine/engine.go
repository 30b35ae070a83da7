// Package engine orchestrates observers for the daemon and funnels their
// events into the conversation store.
package engine

import (
	"context"
	"sync"

	"github.com/replywatch/replywatch/internal/daemon/notify"
	"github.com/replywatch/replywatch/internal/daemon/observer"
	"github.com/replywatch/replywatch/internal/daemon/store"
	"github.com/sirupsen/logrus"
)

// Engine manages and runs all observers. A single consumer goroutine
// applies their events to the store, so all mutations are serialized
// through one entry point with no locking beyond the store's own.
type Engine struct {
	store      *store.Store
	dispatcher *notify.Dispatcher
	focus      *notify.FocusTracker
	observers  []observer.Observer
	logger     *logrus.Entry
}

// New creates a new Engine instance.
func New(st *store.Store, dispatcher *notify.Dispatcher, focus *notify.FocusTracker, logger *logrus.Entry) *Engine {
	return &Engine{
		store:      st,
		dispatcher: dispatcher,
		focus:      focus,
		logger:     logger,
	}
}

// Register adds an observer to the engine.
func (e *Engine) Register(o observer.Observer) {
	e.observers = append(e.observers, o)
}

// Start runs all observers and blocks until context is canceled.
func (e *Engine) Start(ctx context.Context) {
	events := make(chan observer.Event, 100)
	var wg sync.WaitGroup

	// 1. Start Event Consumer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				e.apply(ev)
			}
		}
	}()

	// 2. Start Observers
	for _, o := range e.observers {
		wg.Add(1)
		go func(obs observer.Observer) {
			defer wg.Done()
			e.logger.WithField("observer", obs.Name()).Info("Starting observer")
			if err := obs.Run(ctx, events); err != nil {
				e.logger.WithField("observer", obs.Name()).WithError(err).Error("Observer failed")
			}
		}(o)
	}

	wg.Wait()
}

// apply maps one observer event onto a store operation. Persistence
// failures are logged here; the observer stream has no ack path, and the
// in-memory state is allowed to run ahead of storage.
func (e *Engine) apply(ev observer.Event) {
	switch ev.Type {
	case observer.TurnStarted:
		if _, err := e.store.BeginConversation(ev.ID, ev.Prompt, ev.HostContextID); err != nil {
			e.logger.WithError(err).WithField("id", ev.ID).Error("Failed to persist new conversation")
		}

	case observer.ContentChanged:
		if _, err := e.store.UpdateContent(ev.ID, ev.Content); err != nil {
			e.logger.WithError(err).WithField("id", ev.ID).Error("Failed to apply content update")
		}

	case observer.ContentSettled:
		record, completedNow, err := e.store.CompleteConversation(ev.ID, ev.Content)
		if err != nil {
			e.logger.WithError(err).WithField("id", ev.ID).Error("Failed to persist completion")
		}
		if record != nil && completedNow {
			e.dispatcher.Dispatch(record)
		}

	case observer.PageFocused:
		e.focus.SetForeground(ev.HostContextID)

	case observer.PageBlurred:
		e.focus.ClearForeground(ev.HostContextID)

	case observer.PageNavigating, observer.PageGone:
		affected, err := e.store.MarkInterrupted(ev.HostContextID)
		if err != nil {
			e.logger.WithError(err).WithField("host", ev.HostContextID).Error("Failed to persist interruption")
		}
		if len(affected) > 0 {
			e.logger.WithFields(logrus.Fields{
				"host":  ev.HostContextID,
				"count": len(affected),
			}).Info("Marked conversations interrupted")
		}
		if ev.Type == observer.PageGone {
			e.focus.ClearForeground(ev.HostContextID)
		}

	default:
		e.logger.WithField("type", ev.Type).Debug("Ignoring unknown observer event")
	}
}

// Store returns the engine's conversation store.
func (e *Engine) Store() *store.Store {
	return e.store
}
