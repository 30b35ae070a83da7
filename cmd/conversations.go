package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/replywatch/replywatch/cli"
	"github.com/replywatch/replywatch/pkg/daemon"
	"github.com/replywatch/replywatch/pkg/paths"
	"github.com/replywatch/replywatch/tui/theme"
)

// NewConversationsCmd returns commands for inspecting and mutating the
// tracked conversation set from the shell.
func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Inspect tracked conversations",
	}

	cmd.AddCommand(newConversationsListCmd())
	cmd.AddCommand(newConversationsDeleteCmd())
	cmd.AddCommand(newConversationsEditCmd())
	cmd.AddCommand(newConversationsRestoreCmd())

	return cmd
}

func connectClient(cmd *cobra.Command) (daemon.Client, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	socket := cfg.Daemon.Socket
	if socket == "" {
		socket = paths.SocketPath()
	}
	return daemon.Connect(socket)
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			conversations, err := client.GetConversations(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := json.MarshalIndent(conversations, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(conversations) == 0 {
				fmt.Println("No conversations tracked.")
				return nil
			}
			for _, conv := range conversations {
				preview := conv.DisplayContent()
				if idx := strings.IndexByte(preview, '\n'); idx >= 0 {
					preview = preview[:idx]
				}
				if len(preview) > 70 {
					preview = preview[:70] + "..."
				}
				fmt.Printf("%s %s  [%s]  %s\n",
					theme.StatusIcon(string(conv.Status)),
					conv.ID,
					conv.Status,
					preview,
				)
			}
			return nil
		},
	}
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ack, err := client.DeleteConversation(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !ack.Success {
				return fmt.Errorf("delete failed: %s", ack.Error)
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newConversationsEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <content>",
		Short: "Override a conversation's displayed reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ack, err := client.SetEditedContent(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if !ack.Success {
				return fmt.Errorf("edit failed: %s", ack.Error)
			}
			fmt.Printf("Updated %s\n", args[0])
			return nil
		},
	}
}

func newConversationsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Drop the edited override, restoring the original reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ack, err := client.ClearEditedContent(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !ack.Success {
				return fmt.Errorf("restore failed: %s", ack.Error)
			}
			fmt.Printf("Restored %s\n", args[0])
			return nil
		},
	}
}
