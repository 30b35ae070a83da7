package main

import (
	"os"

	"github.com/replywatch/replywatch/cli"
	"github.com/replywatch/replywatch/cmd"
	"github.com/replywatch/replywatch/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"replywatch",
		"Track assistant replies and relay them to live panels",
	)
	rootCmd.Version = version.Version

	rootCmd.AddCommand(cmd.NewDaemonCmd())
	rootCmd.AddCommand(cmd.NewPanelCmd())
	rootCmd.AddCommand(cmd.NewConversationsCmd())
	rootCmd.AddCommand(cmd.NewPromptsCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("replywatch"))

	cli.SetStyledHelp(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		cli.PrintError(rootCmd, err)
		os.Exit(1)
	}
}
