package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Dayflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Dayflow client v1.0.0")
		},
	}
}
