package main

import (
	"sort"

	"github.com/spf13/cobra"

	"pkghub/internal/api"
	"pkghub/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server version and row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("version: %s\n", resp.Version)
				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)

				tables := make([]string, 0, len(resp.Counts))
				for table := range resp.Counts {
					tables = append(tables, table)
				}
				sort.Strings(tables)
				for _, table := range tables {
					_ = writePlain("  %s: %d\n", table, resp.Counts[table])
				}
				return nil
			})
		},
	}
}
