package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Run serves HTTP and runs the message router until ctx is cancelled, then
// shuts both down.
func (app *App) Run(ctx context.Context) error {
	cfg := app.Config
	logger := app.Logger

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.Router.Run(gctx); err != nil {
			return fmt.Errorf("message router: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.InfoContext(gctx, "HTTP server listening", attr.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			logger.InfoContext(gctx, "Metrics server listening", attr.String("address", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.WaitForShutdown(srv, metricsSrv)
		return nil
	})

	return g.Wait()
}
