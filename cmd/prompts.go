package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replywatch/replywatch/tui/theme"
)

// NewPromptsCmd returns commands for managing the prompt library.
func NewPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage saved prompt templates",
	}

	cmd.AddCommand(newPromptsListCmd())
	cmd.AddCommand(newPromptsAddCmd())
	cmd.AddCommand(newPromptsDeleteCmd())
	cmd.AddCommand(newPromptsPinCmd())

	return cmd
}

func newPromptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			prompts, err := client.ListPrompts(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := json.MarshalIndent(prompts, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(prompts) == 0 {
				fmt.Println("No prompts saved.")
				return nil
			}
			for _, prompt := range prompts {
				pin := " "
				if prompt.Pinned {
					pin = theme.IconPinned
				}
				fmt.Printf("%s %s  %s\n", pin, prompt.ID, prompt.Title)
			}
			return nil
		},
	}
}

func newPromptsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <content>",
		Short: "Save a new prompt template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			prompt, err := client.CreatePrompt(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", prompt.ID)
			return nil
		},
	}
}

func newPromptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ack, err := client.DeletePrompt(context.Background(), args[0])
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

func newPromptsPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle a prompt's pinned flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			ack, err := client.TogglePromptPin(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !ack.Success {
				return fmt.Errorf("pin failed: %s", ack.Error)
			}
			fmt.Printf("Toggled %s\n", args[0])
			return nil
		},
	}
}
