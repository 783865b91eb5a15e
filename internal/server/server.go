// Package server runs the HTTP listener and the gRPC health endpoint for the
// lifetime of a context and drains both on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Config holds listener settings.
type Config struct {
	Port            string
	GRPCPort        string // empty disables the gRPC health server
	ShutdownTimeout time.Duration
	HealthInterval  time.Duration
}

// Run serves handler until ctx is cancelled or the listener fails. health
// drives the gRPC health status.
func Run(ctx context.Context, cfg Config, handler http.Handler, health grpc.Checker) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var gs *grpc.Server
	if cfg.GRPCPort != "" {
		gs = grpc.New(health, cfg.HealthInterval)
		if err := gs.Start(cfg.GRPCPort); err != nil {
			return err
		}
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go gs.Watch(watchCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http: graceful shutdown failed", "error", err)
	}
	if gs != nil {
		gs.Stop()
	}
	return serveErr
}
