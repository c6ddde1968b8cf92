package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/diglink-inc/diglink/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diglink",
		Short: "DigLink - BlueStakes ticket synchronization service",
		Long:  `DigLink keeps utility-locate tickets in sync with BlueStakes and runs ticket update automation jobs.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
