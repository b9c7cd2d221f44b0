package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
)

// WaitForShutdown stops the HTTP servers and releases the bus and storage.
func (app *App) WaitForShutdown(servers ...*http.Server) {
	logger := app.Logger
	logger.Info("Shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", attr.String("address", srv.Addr), attr.Error(err))
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
		return
	}
	logger.Info("Application shut down gracefully")
}

// Close releases the message router, the event bus and the database.
func (app *App) Close() error {
	var errs []error
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := app.closeStorage(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (app *App) closeStorage() error {
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}
