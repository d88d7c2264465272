package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ShutdownTimeout bounds the graceful shutdown of HTTP servers.
const ShutdownTimeout = 5 * time.Second

// ServeHTTP runs srv on ln until ctx is done, then shuts it down gracefully.
// It returns the listener error if the server stops on its own.
func ServeHTTP(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return err
			}
		}
		logger.Info("HTTP server stopped")
		return nil
	}
}
