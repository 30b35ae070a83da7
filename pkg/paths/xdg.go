// Package paths provides XDG-compliant path resolution for replywatch.
//
// Resolution order:
// 1. REPLYWATCH_HOME (portable root) → $REPLYWATCH_HOME/{config,data,state}
// 2. XDG env vars → $XDG_*_HOME/replywatch
// 3. Platform defaults → ~/.config/replywatch, ~/.local/share/replywatch, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("REPLYWATCH_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getDataHome returns the base data home directory.
func getDataHome() string {
	if home := os.Getenv("REPLYWATCH_HOME"); home != "" {
		return filepath.Join(home, "data")
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("REPLYWATCH_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the replywatch configuration directory.
// Used for replywatch.yml and the panel keymap file.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "replywatch")
}

// DataDir returns the replywatch data directory.
// Used for the persisted conversation document.
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "replywatch")
}

// StateDir returns the replywatch state directory.
// Used for logs and the daemon PID file.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "replywatch")
}

// RuntimeDir returns the runtime directory for the daemon socket.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if home := os.Getenv("REPLYWATCH_HOME"); home != "" {
		return filepath.Join(home, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "replywatch")
	}
	return StateDir()
}

// SocketPath returns the path to the replywatchd unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "replywatchd.sock")
}

// PidFilePath returns the path to the replywatchd PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "replywatchd.pid")
}

// DataFile returns the path to the persisted storage document.
func DataFile() string {
	data := DataDir()
	if data == "" {
		return ""
	}
	return filepath.Join(data, "conversations.yml")
}

// LogDir returns the directory for component log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// EnsureDirs creates all replywatch directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		DataDir(),
		StateDir(),
		RuntimeDir(),
		LogDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
