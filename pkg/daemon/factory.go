package daemon

import (
	"net"
	"os"
	"time"

	rwerrors "github.com/replywatch/replywatch/errors"
	"github.com/replywatch/replywatch/pkg/paths"
)

// Connect returns a Client for the running daemon, or an error when the
// daemon is unavailable. There is no local fallback: panel surfaces are
// projections of daemon state and have nothing to show without it.
func Connect(socketPath string) (Client, error) {
	if socketPath == "" {
		socketPath = paths.SocketPath()
	}

	if _, err := os.Stat(socketPath); err != nil {
		return nil, rwerrors.DaemonNotRunning(socketPath)
	}

	// Socket file exists, verify we can actually connect
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return nil, rwerrors.DaemonNotRunning(socketPath)
	}
	conn.Close()

	return NewRemoteClient(socketPath)
}
