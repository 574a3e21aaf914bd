package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkghub/internal/config"
	"pkghub/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var yamlOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:           "pkghub",
		Short:         "pkghub stores users, packages and their binary artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			if yamlOutput {
				outputFormatter = format.YAMLFormatter{}
				// Structured output paths key off jsonOutput.
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newSeedCmd(cfg, &jsonOutput),
		newUserCmd(cfg, &jsonOutput),
		newRoleCmd(cfg, &jsonOutput),
		newPackageCmd(cfg, &jsonOutput),
		newArtifactCmd(cfg, &jsonOutput),
	)

	return cmd
}
