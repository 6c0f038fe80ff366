package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanha-creative/autonamer/internal/handlers"
	"github.com/vanha-creative/autonamer/internal/images"
	"github.com/vanha-creative/autonamer/internal/pipeline"
	"github.com/vanha-creative/autonamer/internal/source"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server for the review interface",
		Long: `Starts the Autonamer HTTP API.

The review interface posts a folder path (or s3://bucket/prefix) to
/api/analyze, edits the resulting groups, and downloads the rename plan
as CSV or Parquet.`,
		Example: `  # Start server on the configured address (default :8888)
  autonamer serve

  # Start server on a custom address with a config file
  autonamer serve --config autonamer.yaml --addr :3001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			thumbs := images.NewThumbnailer(filepath.Join(cfg.Server.TempDir, "thumbs"), "/temp/thumbs/")
			analyzer, err := pipeline.Build(cfg, thumbs)
			if err != nil {
				return err
			}

			open := func(location string) (source.Source, error) {
				return source.Open(location, cfg.Bucket, cfg.Server.TempDir, thumbs)
			}
			handler := handlers.New(cfg, analyzer, open)

			server := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Autonamer API available", "addr", cfg.Server.Addr, "temp_dir", cfg.Server.TempDir)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides config)")

	return cmd
}
