package main

import (
	"github.com/spf13/cobra"

	pginfra "github.com/obakengshepherd/InsureClaim/internal/infrastructure/postgres"
	"github.com/obakengshepherd/InsureClaim/pkg/helpers"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, "up", 0, helpers.NewLogger("insurectl", cfg.Env))
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, "down", migrateSteps, helpers.NewLogger("insurectl", cfg.Env))
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
