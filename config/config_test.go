package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replywatch.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "replywatch.yml"))
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Observer.QuietPeriodMs)
	assert.Equal(t, 50, cfg.Notifications.PreviewLength)
	assert.Equal(t, "Assistant reply finished", cfg.Notifications.Title)
	require.NotNil(t, cfg.Notifications.Enabled)
	assert.True(t, *cfg.Notifications.Enabled)
	require.NotNil(t, cfg.Notifications.Sound)
	assert.True(t, *cfg.Notifications.Sound)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1"
daemon:
  socket: /tmp/custom.sock
  data_file: /tmp/data.yml
observer:
  transcripts:
    - /var/log/assistant/session.jsonl
  quiet_period_ms: 500
notifications:
  enabled: false
  title: Reply done
  preview_length: 80
  sound: false
panel:
  keymap: ~/.config/replywatch/keymap.toml
  theme: gruvbox
  icons: ascii
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.sock", cfg.Daemon.Socket)
	assert.Equal(t, 500, cfg.Observer.QuietPeriodMs)
	require.Len(t, cfg.Observer.Transcripts, 1)
	require.NotNil(t, cfg.Notifications.Enabled)
	assert.False(t, *cfg.Notifications.Enabled)
	assert.Equal(t, "Reply done", cfg.Notifications.Title)
	assert.Equal(t, 80, cfg.Notifications.PreviewLength)
	assert.Equal(t, "gruvbox", cfg.Panel.Theme)
	assert.Equal(t, "ascii", cfg.Panel.Icons)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown daemon key", "daemon:\n  sockett: /tmp/x.sock\n"},
		{"negative quiet period", "observer:\n  quiet_period_ms: -5\n"},
		{"zero preview length", "notifications:\n  preview_length: 0\n"},
		{"bad icons value", "panel:\n  icons: emoji\n"},
		{"wrong type", "observer:\n  transcripts: not-a-list\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestExplicitFalseSurvivesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "notifications:\n  enabled: false\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Notifications.Enabled)
	assert.False(t, *cfg.Notifications.Enabled, "defaults must not override an explicit false")
}

func TestUnmarshalSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
logging:
  level: debug
  file:
    enabled: true
`))
	require.NoError(t, err)

	var logCfg struct {
		Level string `yaml:"level"`
		File  struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"file"`
	}
	require.NoError(t, cfg.UnmarshalSection("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.File.Enabled)

	// Unknown sections leave the target zero-valued.
	var other struct {
		Key string `yaml:"key"`
	}
	require.NoError(t, cfg.UnmarshalSection("missing", &other))
	assert.Empty(t, other.Key)
}
