package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// playTimeout bounds a single playback invocation.
const playTimeout = 10 * time.Second

// Executor creates exec.Cmd instances. This abstraction allows for
// dependency injection, enabling test-specific command creation logic
// without modifying production code.
type Executor interface {
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor is the production implementation of the Executor
// interface, backed by the standard os/exec package.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// SoundPlayer plays a user-supplied sound through the platform's audio
// player. The sound bytes come from the persisted document (uploaded
// audio), not from disk.
type SoundPlayer struct {
	executor Executor
	logger   *logrus.Entry
}

// NewSoundPlayer creates a player using the real executor.
func NewSoundPlayer(logger *logrus.Entry) *SoundPlayer {
	return NewSoundPlayerWithExecutor(&RealExecutor{}, logger)
}

// NewSoundPlayerWithExecutor creates a player with a custom Executor.
func NewSoundPlayerWithExecutor(executor Executor, logger *logrus.Entry) *SoundPlayer {
	return &SoundPlayer{executor: executor, logger: logger}
}

// Play writes the sound to a temporary file and hands it to the first
// available platform player. Playback is best effort.
func (p *SoundPlayer) Play(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp("", "replywatch-sound-*")
	if err != nil {
		return fmt.Errorf("failed to stage sound file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage sound file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage sound file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, playTimeout)
	defer cancel()

	var lastErr error
	for _, player := range platformPlayers() {
		cmd := p.executor.CommandContext(ctx, player, tmp.Name())
		if err := cmd.Run(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("no audio player succeeded: %w", lastErr)
	}
	return fmt.Errorf("no audio player available")
}

// platformPlayers lists candidate player binaries in preference order.
func platformPlayers() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"afplay"}
	case "windows":
		return nil
	default:
		return []string{"paplay", "aplay", "ffplay"}
	}
}
