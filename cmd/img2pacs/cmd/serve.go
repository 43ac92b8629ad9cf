package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jpfielding/img2pacs/pkg/server"
	"github.com/spf13/cobra"
)

// NewServeCmd runs the HTTP form backend
func NewServeCmd(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve patient lookup and conversion over HTTP",
		Long:  "Serves /api/v1/patients/{id}, /api/v1/conversions, /health and /metrics until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.HTTP.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			finder, err := a.patientFinder(ctx)
			if err != nil {
				return err
			}
			s := &server.Server{
				Finder:         finder,
				Converter:      a.orchestrator(),
				Metrics:        a.metrics,
				Log:            a.log,
				AllowedOrigins: a.cfg.HTTP.AllowedOrigins,
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           s.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.log.InfoContext(ctx, "Server starting", "addr", addr, "archive", a.cfg.ArchiveAddress())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.log.InfoContext(ctx, "Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "Server stopped")
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("addr", "127.0.0.1:8080", "listen address, overrides HTTP_ADDR")
	return cmd
}
