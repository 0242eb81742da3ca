package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	httpadapter "github.com/aretw0/triage/pkg/adapters/http"
)

// Serve runs the HTTP API until ctx is done, then drains requests and
// running jobs within the configured shutdown timeout.
func Serve(ctx context.Context, app *App) error {
	ln, err := net.Listen("tcp", app.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.Config.Server.Addr, err)
	}
	return serveListener(ctx, app, ln)
}

func serveListener(ctx context.Context, app *App, ln net.Listener) error {
	srv := httpadapter.NewServer(ln.Addr().String(), app.Handler())

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting triage server", "addr", ln.Addr().String(),
			"store", app.Config.Store.Backend, "reference", app.Config.Reference.Backend)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	timeout := app.Config.Server.ShutdownTimeout
	app.Logger.Info("Shutting down", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Warn("Graceful shutdown did not complete", "err", err)
		errs = append(errs, srv.Close())
	}
	if err := app.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	app.Logger.Info("Triage server stopped gracefully")
	return nil
}
