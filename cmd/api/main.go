package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/cmd/api/commands"
)

// @title Dayflow API
// @version 1.0
// @description Personal task and daily-notes service

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "dayflow-api",
		Short: "Dayflow API Server",
		Long:  `Dayflow is a personal task and daily-notes service with per-user bearer-token authentication.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
