package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServer serves the generated site plus operational endpoints.
type HTTPServer struct {
	daemon *Daemon
	srv    *http.Server
}

// NewHTTPServer wires the daemon's routes.
func NewHTTPServer(d *Daemon) *HTTPServer {
	mux := http.NewServeMux()
	s := &HTTPServer{daemon: d}

	mux.Handle("/", http.FileServer(http.Dir(d.layout.HTMLDir)))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", d.metrics.Handler())

	s.srv = &http.Server{
		Addr:              d.cfg.Daemon.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening in the background.
func (s *HTTPServer) Start(_ context.Context) error {
	go func() {
		slog.Info("HTTP server listening", "addr", s.srv.Addr, "site_dir", s.daemon.layout.HTMLDir)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the server gracefully.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	type health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health{
		Status: "ok",
		Uptime: time.Since(s.daemon.startTime).Round(time.Second).String(),
	})
}
