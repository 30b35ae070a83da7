package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/replywatch/replywatch/cli"
	"github.com/replywatch/replywatch/pkg/daemon"
	"github.com/replywatch/replywatch/pkg/paths"
	"github.com/replywatch/replywatch/tui/panel"
	"github.com/replywatch/replywatch/util/pathutil"
)

// NewPanelCmd returns the interactive panel command.
func NewPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the live conversation panel",
		Long:  "Attach to the running daemon and show conversations and prompts as they change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			socket := cfg.Daemon.Socket
			if socket == "" {
				socket = paths.SocketPath()
			}

			client, err := daemon.Connect(socket)
			if err != nil {
				return err
			}
			defer client.Close()

			keys := panel.DefaultKeyMap()
			if cfg.Panel.Keymap != "" {
				keymapPath, err := pathutil.Expand(cfg.Panel.Keymap)
				if err != nil {
					return fmt.Errorf("invalid keymap path %s: %w", cfg.Panel.Keymap, err)
				}
				if err := panel.LoadOverrides(&keys, keymapPath); err != nil {
					return fmt.Errorf("invalid keymap file %s: %w", keymapPath, err)
				}
			}

			sound := cfg.Notifications.Sound == nil || *cfg.Notifications.Sound
			model := panel.New(client,
				panel.WithKeyMap(keys),
				panel.WithSound(sound),
			)

			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
	return cmd
}
