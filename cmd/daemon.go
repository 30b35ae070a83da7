// Package cmd contains the replywatch CLI subcommands.
package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/replywatch/replywatch/cli"
	"github.com/replywatch/replywatch/config"
	"github.com/replywatch/replywatch/internal/daemon/engine"
	"github.com/replywatch/replywatch/internal/daemon/notify"
	"github.com/replywatch/replywatch/internal/daemon/observer"
	"github.com/replywatch/replywatch/internal/daemon/pidfile"
	"github.com/replywatch/replywatch/internal/daemon/server"
	"github.com/replywatch/replywatch/internal/daemon/storage"
	"github.com/replywatch/replywatch/internal/daemon/store"
	"github.com/replywatch/replywatch/logging"
	"github.com/replywatch/replywatch/pkg/models"
	"github.com/replywatch/replywatch/pkg/paths"
	"github.com/replywatch/replywatch/util/pathutil"
)

// NewDaemonCmd returns the replywatchd daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the replywatch daemon",
		Long:  "The daemon (replywatchd) tracks conversation lifecycles and serves attached panel surfaces.",
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the replywatch daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("replywatchd")

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to prepare directories: %w", err)
			}

			pidPath := paths.PidFilePath()
			sockPath := cfg.Daemon.Socket
			if sockPath == "" {
				sockPath = paths.SocketPath()
			}
			dataFile := cfg.Daemon.DataFile
			if dataFile == "" {
				dataFile = paths.DataFile()
			}

			// 1. Acquire lock
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 2. Store over the persisted document
			st, err := store.New(storage.New(dataFile), logger)
			if err != nil {
				return fmt.Errorf("failed to open data file: %w", err)
			}

			// 3. Completion notifications
			focus := notify.NewFocusTracker()
			dispatcher := notify.New(focus, notify.DesktopAlerter{}, st, notify.Options{
				Title:         cfg.Notifications.Title,
				PreviewLength: cfg.Notifications.PreviewLength,
				AlertsEnabled: *cfg.Notifications.Enabled,
				SoundEnabled:  *cfg.Notifications.Sound,
			}, logger)
			dispatcher.SetCustomSound(notify.NewSoundPlayer(logger), func() []byte {
				encoded, err := st.CustomSound()
				if err != nil || encoded == "" {
					return nil
				}
				data, err := base64.StdEncoding.DecodeString(encoded)
				if err != nil {
					logger.WithError(err).Warn("Stored custom sound is not valid base64")
					return nil
				}
				return data
			})

			// 4. Engine with one observer per transcript
			quiet := time.Duration(cfg.Observer.QuietPeriodMs) * time.Millisecond
			eng := engine.New(st, dispatcher, focus, logger)
			for _, transcript := range cfg.Observer.Transcripts {
				expanded, err := pathutil.Expand(transcript)
				if err != nil {
					logger.WithError(err).WithField("path", transcript).Warn("Skipping transcript with unresolvable path")
					continue
				}
				eng.Register(observer.NewTranscriptObserver(expanded, quiet, logger))
			}

			// 5. Server
			srv := server.New(logger)
			srv.SetStore(st)
			srv.SetRunningConfig(&server.RunningConfig{
				QuietPeriod:   quiet,
				PreviewLength: cfg.Notifications.PreviewLength,
				AlertsEnabled: *cfg.Notifications.Enabled,
				SoundEnabled:  *cfg.Notifications.Sound,
				Transcripts:   cfg.Observer.Transcripts,
				StartedAt:     time.Now(),
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// 6. Config watcher: tell attached surfaces to re-read
			watcher, err := config.NewWatcher(logger, 500, func(file string) {
				st.Broadcast(models.Event{Type: models.EventConfigReload, ConfigFile: file})
			})
			if err != nil {
				logger.Warnf("Config watcher unavailable: %v", err)
			} else {
				go watcher.Start(ctx)
			}

			// 7. Signals
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-stop
				logger.Info("Received stop signal")
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}

				_ = pidfile.Release(pidPath)
				os.Exit(0)
			}()

			// 8. Engine in background, server in foreground
			go eng.Start(ctx)

			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			if err := srv.ListenAndServe(sockPath); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()
			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if running {
				fmt.Printf("Running (PID: %d)\nSocket: %s\n", pid, paths.SocketPath())
			} else {
				fmt.Println("Stopped")
				os.Exit(1) // Non-zero for stopped state (useful for scripts)
			}
			return nil
		},
	}
}
