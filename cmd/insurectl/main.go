package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/obakengshepherd/InsureClaim/config"
)

var rootCmd = &cobra.Command{
	Use:   "insurectl",
	Short: "Administrative tasks for the InsureClaim API",
	Long: `insurectl runs operational tasks against the InsureClaim database.

Configuration is read from the environment (and .env when present),
the same way the API server reads it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
	},
}

var cfg *config.Config

func init() {
	rootCmd.AddCommand(migrateCmd, seedAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
