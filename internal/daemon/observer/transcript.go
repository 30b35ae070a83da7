package observer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpcloud/tail"
	"github.com/sirupsen/logrus"
)

// transcriptRecord is one raw JSONL line emitted by a page-side probe.
type transcriptRecord struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversation_id"`
	Host           string `json:"host"`
	Prompt         string `json:"prompt"`
	Content        string `json:"content"`
}

// TranscriptObserver tails a JSONL transcript file of raw page records
// and turns them into lifecycle events. Records may omit an explicit
// settle; the observer's Settler synthesizes one after the quiet period.
type TranscriptObserver struct {
	path   string
	quiet  time.Duration
	logger *logrus.Entry

	// activeByHost maps a host context to its streaming conversation so
	// records without a conversation_id still resolve.
	activeByHost map[string]string
	// hostByID is the reverse index, used to cancel countdowns on teardown.
	hostByID map[string]string
}

// NewTranscriptObserver creates an observer tailing the given file.
func NewTranscriptObserver(path string, quiet time.Duration, logger *logrus.Entry) *TranscriptObserver {
	return &TranscriptObserver{
		path:         path,
		quiet:        quiet,
		logger:       logger,
		activeByHost: make(map[string]string),
		hostByID:     make(map[string]string),
	}
}

// Name implements Observer.
func (o *TranscriptObserver) Name() string {
	return "transcript:" + o.path
}

// Run implements Observer. It blocks until the context is canceled.
func (o *TranscriptObserver) Run(ctx context.Context, events chan<- Event) error {
	t, err := tail.TailFile(o.path, tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	emit := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	// The callback runs on a timer goroutine; it only gets what Touch
	// captured, never the maps handle mutates.
	settler := NewSettler(o.quiet, func(id, host, content string) {
		emit(Event{
			Type:          ContentSettled,
			ID:            id,
			HostContextID: host,
			Content:       content,
		})
	})
	defer settler.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				o.logger.WithError(line.Err).Warn("Transcript read error")
				continue
			}
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}

			var rec transcriptRecord
			if err := json.Unmarshal([]byte(text), &rec); err != nil {
				o.logger.WithError(err).Debug("Skipping malformed transcript line")
				continue
			}

			o.handle(rec, settler, emit)
		}
	}
}

func (o *TranscriptObserver) handle(rec transcriptRecord, settler *Settler, emit func(Event)) {
	switch EventType(rec.Event) {
	case TurnStarted:
		id := rec.ConversationID
		if id == "" {
			id = NewConversationID()
		}
		o.activeByHost[rec.Host] = id
		o.hostByID[id] = rec.Host
		emit(Event{
			Type:          TurnStarted,
			ID:            id,
			HostContextID: rec.Host,
			Prompt:        rec.Prompt,
		})

	case ContentChanged:
		id := o.resolveID(rec)
		if id == "" {
			o.logger.WithField("host", rec.Host).Debug("Content change without a known conversation")
			return
		}
		host := o.hostByID[id]
		emit(Event{
			Type:          ContentChanged,
			ID:            id,
			HostContextID: host,
			Content:       rec.Content,
		})
		settler.Touch(id, host, rec.Content)

	case ContentSettled:
		id := o.resolveID(rec)
		if id == "" {
			return
		}
		settler.Cancel(id)
		emit(Event{
			Type:          ContentSettled,
			ID:            id,
			HostContextID: o.hostByID[id],
			Content:       rec.Content,
		})
		o.forget(id)

	case PageFocused, PageBlurred:
		emit(Event{Type: EventType(rec.Event), HostContextID: rec.Host})

	case PageNavigating, PageGone:
		// Teardown: pending countdowns for this host must not fire later.
		if id, ok := o.activeByHost[rec.Host]; ok {
			settler.Cancel(id)
			o.forget(id)
		}
		emit(Event{Type: EventType(rec.Event), HostContextID: rec.Host})

	default:
		o.logger.WithField("event", rec.Event).Debug("Unknown transcript event")
	}
}

// resolveID prefers the record's explicit id, falling back to the host's
// active conversation.
func (o *TranscriptObserver) resolveID(rec transcriptRecord) string {
	if rec.ConversationID != "" {
		if _, ok := o.hostByID[rec.ConversationID]; !ok && rec.Host != "" {
			o.hostByID[rec.ConversationID] = rec.Host
		}
		return rec.ConversationID
	}
	return o.activeByHost[rec.Host]
}

func (o *TranscriptObserver) forget(id string) {
	if host, ok := o.hostByID[id]; ok {
		if o.activeByHost[host] == id {
			delete(o.activeByHost, host)
		}
		delete(o.hostByID, id)
	}
}
