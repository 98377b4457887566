package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/vsinha/gestionale/pkg/infrastructure/http"
)

// newServeCommand creates the serve command
func newServeCommand(opts *globalOptions) *cobra.Command {
	var (
		addr    string
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /health, Prometheus metrics and the event log",
		Long: `Start an HTTP server exposing /health, the metrics endpoint
(metrics.path, default /metrics) and /events, the JSON list of domain
events published since startup (?from=N skips the first N). The
producible units gauge of every product is refreshed periodically.
Stops on SIGINT or SIGTERM.

Examples:
  gestionale serve --config config.yaml
  gestionale serve --addr :9100 --refresh 30s --catalog catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh <= 0 {
				return fmt.Errorf("--refresh must be positive, got %s", refresh)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if addr == "" {
				addr = app.Config.Metrics.Addr
			}
			server := httpserver.New(addr, app.Config.Metrics.Path, app.Registry, app.Events, app.Logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			refreshProducible(ctx, app)
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()

			for {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("http server failed: %w", err)
					}
					return nil
				case <-ticker.C:
					refreshProducible(ctx, app)
				case <-ctx.Done():
					app.Logger.Info("shutting down")
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return server.Shutdown(shutdownCtx)
				}
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default metrics.addr)")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Minute, "Producible units gauge refresh interval")
	return cmd
}

// refreshProducible recomputes the producible units of every product; the
// production service publishes each result to the gauge.
func refreshProducible(ctx context.Context, app *App) {
	products, err := app.Products.GetAllProducts(ctx)
	if err != nil {
		app.Logger.Error("failed to list products", "error", err)
		return
	}
	for _, p := range products {
		if _, err := app.Production.Producibility(ctx, p.ID); err != nil {
			app.Logger.Warn("failed to compute producible units", "product_id", p.ID, "error", err)
		}
	}
}
