package main

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkghub/internal/api"
	"pkghub/internal/config"
	"pkghub/internal/models"
)

func newPackageCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package",
		Aliases: []string{"pkg"},
		Short:   "Manage packages and download their archives",
	}
	cmd.AddCommand(
		newPackageCreateCmd(cfg, jsonOutput),
		newPackageListCmd(cfg, jsonOutput),
		newPackageShowCmd(cfg, jsonOutput),
		newPackageArchiveCmd(cfg, jsonOutput),
	)
	return cmd
}

func newPackageCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a package",
		Args:  requireExactlyArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				pkg, err := client.CreatePackage(cmd.Context(), api.PackageCreateRequest{Name: args[0], CreatedBy: owner})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(pkg)
				}
				return writePlain("%s\n", formatPackageLine(pkg))
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "id of the owning user")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newPackageListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				packages, err := client.ListPackages(cmd.Context(), owner)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(packages)
				}
				for _, pkg := range packages {
					if err := writePlain("%s\n", formatPackageLine(pkg)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "only packages created by this user id")
	return cmd
}

func newPackageShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a package and its artifact summaries",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				pkg, err := client.GetPackage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(pkg)
				}
				return writePackageDetail(pkg)
			})
		},
	}
}

func newPackageArchiveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Download all artifacts of a package as a zip archive",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				ctx := cmd.Context()
				path := output
				if path == "" {
					pkg, err := client.GetPackage(ctx, args[0])
					if err != nil {
						return err
					}
					path = models.ArchiveFilename(pkg.Name)
				}
				if path == "-" {
					_, err := client.DownloadArchive(ctx, args[0], os.Stdout)
					return err
				}

				written, err := downloadToFile(path, func(w io.Writer) error {
					_, err := client.DownloadArchive(ctx, args[0], w)
					return err
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"path": path, "size_bytes": written})
				}
				return writePlain("wrote %s to %s\n", humanize.Bytes(uint64(written)), path)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default <package-name>.zip, - for stdout)")
	return cmd
}
