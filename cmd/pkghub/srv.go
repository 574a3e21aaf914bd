package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkghub/internal/artifact"
	"pkghub/internal/config"
	"pkghub/internal/server"
	"pkghub/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the pkghub API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			archiver, err := artifact.NewArchiver(artifact.ArchiveConfig{CompressionLevel: cfg.Archive.CompressionLevel})
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(store.DefaultConfig(cfg.DBPath))
			if err != nil {
				return err
			}
			defer st.Close()

			logger.Info("upload limits",
				"max_upload", humanize.IBytes(uint64(cfg.Uploads.MaxUploadBytes)),
				"multipart_memory", humanize.IBytes(uint64(cfg.Uploads.MultipartMaxMemory)),
				"compression_level", archiver.Level(),
			)

			srv, err := server.New(server.Options{
				Addr:     addr,
				Store:    st,
				Archiver: archiver,
				Uploads: server.UploadLimits{
					MaxUploadBytes:     cfg.Uploads.MaxUploadBytes,
					MultipartMaxMemory: cfg.Uploads.MultipartMaxMemory,
				},
				Version: version,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}
