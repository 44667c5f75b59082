// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/middleware"
)

const healthReadHeaderTimeout = 3 * time.Second

// readiness reports whether a dependency of the daemon is usable.
type readiness func() bool

// newHealthHandler serves /livez, /readyz and /metrics.
func newHealthHandler(metrics http.Handler, checks ...readiness) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		for _, ready := range checks {
			if !ready() {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	var handler http.Handler = mux
	handler = middleware.RequestLoggerMiddleware()(handler)

	return otelhttp.NewHandler(handler, "health",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }))
}

// setupHealthServer starts the health and metrics listener.
func setupHealthServer(addr string, handler http.Handler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: healthReadHeaderTimeout,
	}

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		slog.With("addr", addr).Debug("starting health server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.With(logging.ErrKey, err).Error("health listener error")
		}
	}()

	return httpServer
}

func shutdownHealthServer(ctx context.Context, httpServer *http.Server) {
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("health server shutdown error")
	}
}
