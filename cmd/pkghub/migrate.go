package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkghub/internal/config"
	"pkghub/internal/store"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			if inspect {
				plan, err := migrationStatus(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				if *jsonOutput {
					return writeJSON(plan)
				}

				_ = writePlain("Current version: %d\n", plan.CurrentVersion)
				_ = writePlain("Available version: %d\n", plan.AvailableVersion)
				if len(plan.Pending) == 0 {
					return writePlain("No pending migrations.\n")
				}
				_ = writePlain("Pending migrations: %d\n", len(plan.Pending))
				for _, m := range plan.Pending {
					_ = writePlain("  %d: %s\n", m.Version, m.Description)
				}
				return nil
			}

			st, err := store.Open(store.DefaultConfig(cfg.DBPath))
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := st.Close(); err != nil {
				return err
			}

			if *jsonOutput {
				plan, err := migrationStatus(cfg.DBPath)
				if err != nil {
					return err
				}
				return writeJSON(plan)
			}
			return writePlain("Migrations applied successfully.\n")
		},
	}

	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status without applying")
	return cmd
}

func migrationStatus(path string) (*store.MigrationStatus, error) {
	db, err := store.OpenRaw(store.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return store.MigrationPlan(db)
}
