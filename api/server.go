// Package api exposes the documentation question-answering service over
// HTTP. A single POST /api endpoint accepts a query and returns the
// generated answer; /health and /ready support deployment probes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Server is the HTTP front-end.
type Server struct {
	answerer Answerer
	pinger   Pinger
	logger   *slog.Logger
	http     *http.Server
}

// NewServer builds the server with its routes and middleware installed.
// logger may be nil.
func NewServer(addr string, answerer Answerer, pinger Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		answerer: answerer,
		pinger:   pinger,
		logger:   logger,
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api", s.handleQuery)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)

	return chain(mux,
		recovery(s.logger),
		requestID,
		logging(s.logger),
	)
}

// Handler returns the fully wired handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
