package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zevix-io/zevix/internal/interfaces/cli/migrate"
	"github.com/zevix-io/zevix/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zevix",
		Short: "Zevix - lead generation subscription backend",
		Long:  `Zevix serves the account, lead metering, and billing APIs along with database migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
