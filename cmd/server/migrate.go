package main

import (
	"fmt"

	"github.com/alimgiray/crewledger/pkg/config"
	"github.com/alimgiray/crewledger/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := database.OpenAndMigrate(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			status, err := database.GetMigrationStatus(db)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "current=%d latest=%d dirty=%t pending=%t\n",
				status.CurrentVersion, status.LatestVersion, status.Dirty, status.Pending)
			return nil
		},
	})

	return cmd
}
