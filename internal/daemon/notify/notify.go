// Package notify decides, on conversation completion, whether a
// system-level alert is warranted given which host context is foregrounded.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/replywatch/replywatch/pkg/models"
)

// ForegroundQuerier reports which host context is currently visible.
// An empty id means no watched page is foregrounded.
type ForegroundQuerier interface {
	ForegroundHost() (string, error)
}

// Alerter raises a system-level notification.
type Alerter interface {
	Alert(title, message string) error
}

// Broadcaster fans an event out to attached UI surfaces.
type Broadcaster interface {
	Broadcast(ev models.Event)
}

// Options configures a Dispatcher.
type Options struct {
	// Title is the fixed alert title.
	Title string
	// PreviewLength is how many runes of the reply the alert shows.
	PreviewLength int
	// AlertsEnabled gates desktop alerts.
	AlertsEnabled bool
	// SoundEnabled gates the play-notification-sound broadcast.
	SoundEnabled bool
}

// Dispatcher emits completion alerts and sound cues. It never mutates
// state and never propagates failures up the completion flow.
type Dispatcher struct {
	foreground  ForegroundQuerier
	alerter     Alerter
	broadcaster Broadcaster
	opts        Options
	logger      *logrus.Entry

	player      *SoundPlayer
	customSound func() []byte
}

// New creates a Dispatcher.
func New(foreground ForegroundQuerier, alerter Alerter, broadcaster Broadcaster, opts Options, logger *logrus.Entry) *Dispatcher {
	if opts.Title == "" {
		opts.Title = "Assistant reply finished"
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = 50
	}
	return &Dispatcher{
		foreground:  foreground,
		alerter:     alerter,
		broadcaster: broadcaster,
		opts:        opts,
		logger:      logger,
	}
}

// Dispatch handles a just-completed conversation. A desktop alert is
// raised only when the conversation's owner is not the foregrounded host
// context; the sound cue is broadcast unconditionally (sound is a UI
// affordance, not a disruptive alert). All failures are logged and
// swallowed so completion handling is never blocked.
func (d *Dispatcher) Dispatch(conv *models.Conversation) {
	if d.opts.AlertsEnabled {
		host, err := d.foreground.ForegroundHost()
		if err != nil {
			d.logger.WithError(err).Warn("Failed to query foreground host context")
			// Treat an unknown foreground as background and alert anyway.
			host = ""
		}
		if host == "" || host != conv.HostContextID {
			if err := d.alerter.Alert(d.opts.Title, d.preview(conv)); err != nil {
				d.logger.WithError(err).WithField("id", conv.ID).Warn("Failed to raise completion alert")
			}
		}
	}

	if d.opts.SoundEnabled {
		d.broadcaster.Broadcast(models.Event{Type: models.EventPlayNotificationSound})
		d.playCustomSound()
	}
}

// SetCustomSound installs daemon-side playback of a user-uploaded sound.
// source returns the current sound bytes, or nil when none is set.
func (d *Dispatcher) SetCustomSound(player *SoundPlayer, source func() []byte) {
	d.player = player
	d.customSound = source
}

// playCustomSound plays the uploaded sound, if any, without blocking the
// completion flow.
func (d *Dispatcher) playCustomSound() {
	if d.player == nil || d.customSound == nil {
		return
	}
	data := d.customSound()
	if len(data) == 0 {
		return
	}
	go func() {
		if err := d.player.Play(context.Background(), data); err != nil {
			d.logger.WithError(err).Debug("Custom sound playback failed")
		}
	}()
}

// preview returns the alert body: a truncated slice of the latest
// observed content, with an ellipsis when truncated.
func (d *Dispatcher) preview(conv *models.Conversation) string {
	runes := []rune(conv.Content)
	if len(runes) <= d.opts.PreviewLength {
		return conv.Content
	}
	return string(runes[:d.opts.PreviewLength]) + "..."
}
