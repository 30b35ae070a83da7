// Package config loads and validates replywatch.yml.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the top-level structure of replywatch.yml.
type Config struct {
	// Version of the config schema.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Daemon configures the replywatchd coordinator.
	Daemon DaemonConfig `yaml:"daemon,omitempty" json:"daemon,omitempty"`

	// Observer configures the transcript observers feeding the daemon.
	Observer ObserverConfig `yaml:"observer,omitempty" json:"observer,omitempty"`

	// Notifications configures completion alerts.
	Notifications NotificationConfig `yaml:"notifications,omitempty" json:"notifications,omitempty"`

	// Panel configures the terminal panel UI.
	Panel PanelConfig `yaml:"panel,omitempty" json:"panel,omitempty"`

	// Extensions captures all other top-level keys (e.g. "logging") for
	// section-wise decoding via UnmarshalSection.
	Extensions map[string]interface{} `yaml:",inline" json:"-"`
}

// DaemonConfig configures the coordinator process.
type DaemonConfig struct {
	// Socket overrides the unix socket path. Empty uses the XDG runtime dir.
	Socket string `yaml:"socket,omitempty" json:"socket,omitempty"`
	// DataFile overrides the persisted document path. Empty uses the XDG data dir.
	DataFile string `yaml:"data_file,omitempty" json:"data_file,omitempty"`
}

// ObserverConfig configures how page activity is detected.
type ObserverConfig struct {
	// Transcripts lists JSONL transcript files to tail for page events.
	Transcripts []string `yaml:"transcripts,omitempty" json:"transcripts,omitempty"`
	// QuietPeriodMs is the settle debounce: how long a reply must stay
	// unchanged before it counts as completed.
	QuietPeriodMs int `yaml:"quiet_period_ms,omitempty" json:"quiet_period_ms,omitempty"`
}

// NotificationConfig configures completion alerts.
type NotificationConfig struct {
	// Enabled controls desktop alerts for background completions.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	// Title is the fixed alert title.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	// PreviewLength is how many characters of the reply the alert shows.
	PreviewLength int `yaml:"preview_length,omitempty" json:"preview_length,omitempty"`
	// Sound controls the audible cue broadcast to panel surfaces.
	Sound *bool `yaml:"sound,omitempty" json:"sound,omitempty"`
}

// PanelConfig configures the terminal panel.
type PanelConfig struct {
	// Keymap is the path to a TOML keybinding override file.
	Keymap string `yaml:"keymap,omitempty" json:"keymap,omitempty"`
	// Theme selects the panel color palette ("kanagawa", "gruvbox", "terminal").
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`
	// Icons selects "nerd" (default) or "ascii" glyphs.
	Icons string `yaml:"icons,omitempty" json:"icons,omitempty"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Observer.QuietPeriodMs == 0 {
		c.Observer.QuietPeriodMs = 2000
	}
	if c.Notifications.Enabled == nil {
		enabled := true
		c.Notifications.Enabled = &enabled
	}
	if c.Notifications.Title == "" {
		c.Notifications.Title = "Assistant reply finished"
	}
	if c.Notifications.PreviewLength == 0 {
		c.Notifications.PreviewLength = 50
	}
	if c.Notifications.Sound == nil {
		sound := true
		c.Notifications.Sound = &sound
	}
}

// UnmarshalSection decodes a specific top-level section into a
// strongly-typed struct. Unknown sections are not an error; the target
// simply stays zero-valued.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalSection("logging", &logCfg)
func (c *Config) UnmarshalSection(key string, target interface{}) error {
	section, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("failed to decode section config for '%s': %w", key, err)
	}

	return nil
}
