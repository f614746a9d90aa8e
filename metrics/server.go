package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultPath is where Handler exposes the collectors.
const DefaultPath = "/metrics"

const shutdownTimeout = 5 * time.Second

// Handler serves the default registry on path.
func Handler(path string) http.Handler {
	if path == "" {
		path = DefaultPath
	}
	h := http.NewServeMux()
	h.Handle(path, promhttp.Handler())
	return h
}

// Serve runs a metrics listener on addr until ctx ends.
func Serve(ctx context.Context, addr, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("starting metrics listener", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return errors.Wrap(err, "serve metrics")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown metrics listener")
	}
	return nil
}
