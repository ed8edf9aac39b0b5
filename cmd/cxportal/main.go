package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/frankincense-labs/cx-management/internal/interfaces/cli/migrate"
	"github.com/frankincense-labs/cx-management/internal/interfaces/cli/server"
)

// @title						CX Portal API
// @version					1.0
// @description				Customer feedback, support tickets and interaction history.
// @BasePath					/api
// @securityDefinitions.apikey	SessionCookie
// @in							cookie
// @name						cx_session
func main() {
	rootCmd := &cobra.Command{
		Use:   "cxportal",
		Short: "CX Portal - customer feedback and support",
		Long:  `CX Portal serves the customer experience API with built-in server and migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
