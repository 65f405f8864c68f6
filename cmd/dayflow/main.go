package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/cmd/dayflow/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dayflow",
		Short: "Dayflow task and notes client",
		Long: `Dayflow keeps your tasks and daily notes on this machine and syncs
them with a Dayflow server when you are signed in. Every command works
offline; changes are propagated the next time the server is reachable.`,
		SilenceUsage: true,
	}

	app := commands.NewApp(rootCmd)

	rootCmd.AddCommand(
		commands.NewSignupCommand(app),
		commands.NewLoginCommand(app),
		commands.NewLogoutCommand(app),
		commands.NewWhoamiCommand(app),
		commands.NewTaskCommand(app),
		commands.NewNoteCommand(app),
		commands.NewStatsCommand(app),
		commands.NewSyncCommand(app),
		commands.NewVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
