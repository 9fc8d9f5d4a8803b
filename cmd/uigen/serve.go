package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/session"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		Long: `Serves the chat API:
  POST /api/chat      - run a chat turn, answered with an SSE stream
  GET  /api/files     - workspace of a session (?sessionId=...&glob=...)
  GET  /api/sessions  - open sessions
  GET  /metrics       - Prometheus metrics
  GET  /health        - health check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.serveListener(ctx, ln)
}

// serveListener runs the HTTP API on ln until ctx is done. Cancelling ctx also cancels every
// in-flight request, so running chat turns stop before the server drains.
func (a *app) serveListener(ctx context.Context, ln net.Listener) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := uigen.NewMetrics(reg)

	manager := a.newManager(session.WithManagerMetrics(metrics))

	httpServer := &http.Server{
		Handler:           a.newHandler(manager, metrics, reg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GetShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

func (a *app) newHandler(manager *session.Manager, metrics *uigen.Metrics, reg *prometheus.Registry) http.Handler {
	srv := uigen.NewSSEServer(manager,
		uigen.WithSSEServerLogger(a.logger),
		uigen.WithSSEServerMetrics(metrics),
		uigen.WithSSEServerMaxBodySize(a.cfg.Server.MaxBodySize),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/chat", srv.HandleChat())
	mux.Handle("/api/files", gzhttp.GzipHandler(srv.HandleFiles()))
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(manager.List()); err != nil {
			a.logger.Error("failed to encode sessions", "err", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
