package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkghub/internal/api"
	"pkghub/internal/config"
)

func newArtifactCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Upload, list and download package artifacts",
	}
	cmd.AddCommand(
		newArtifactUploadCmd(cfg, jsonOutput),
		newArtifactListCmd(cfg, jsonOutput),
		newArtifactGetCmd(cfg, jsonOutput),
	)
	return cmd
}

func newArtifactUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name string
	var owner string

	cmd := &cobra.Command{
		Use:   "upload <package-id> <file>",
		Short: "Upload a file as a new artifact",
		Args:  requireExactlyArgs(2, "package id and file are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageID, path := args[0], args[1]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				summary, err := client.UploadArtifact(cmd.Context(), packageID, api.ArtifactUploadRequest{
					Name:      name,
					Filename:  filepath.Base(path),
					CreatedBy: owner,
				}, f)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(summary)
				}
				return writePlain("%s\n", formatArtifactLine(summary))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "artifact name (default: file name)")
	cmd.Flags().StringVar(&owner, "owner", "", "id of the uploading user")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newArtifactListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list <package-id>",
		Short: "List artifact summaries of a package in upload order",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				summaries, err := client.ListArtifacts(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(summaries)
				}
				for _, summary := range summaries {
					if err := writePlain("%s\n", formatArtifactLine(summary)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newArtifactGetCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <package-id> <artifact-id>",
		Short: "Download the payload of one artifact",
		Args:  requireExactlyArgs(2, "package id and artifact id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageID, artifactID := args[0], args[1]
			return withClient(cfg, func(client *api.Client) error {
				ctx := cmd.Context()
				if output == "" || output == "-" {
					_, err := client.DownloadArtifact(ctx, packageID, artifactID, os.Stdout)
					return err
				}

				written, err := downloadToFile(output, func(w io.Writer) error {
					_, err := client.DownloadArtifact(ctx, packageID, artifactID, w)
					return err
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"path": output, "size_bytes": written})
				}
				_, err = fmt.Fprintf(os.Stderr, "wrote %s to %s\n", humanize.Bytes(uint64(written)), output)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default stdout)")
	return cmd
}
