package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (app *Application) Serve(ctx context.Context, mux *http.ServeMux) error {
	srv := &http.Server{
		Addr:         app.Config.HTTPPort,
		Handler:      app.BuildRoutes(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		app.Logger.Info("shutting down server", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("starting server", "addr", app.Config.HTTPPort)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownErr
	if err != nil {
		return err
	}

	app.Logger.Info("stopped server", "addr", app.Config.HTTPPort)

	return nil
}
