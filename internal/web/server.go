package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"pingflow/internal/models"
)

// Server serves the stored and live results as JSON
type Server struct {
	store models.Store
	live  models.LiveStats
	port  int
}

// New creates a new web server
func New(store models.Store, live models.LiveStats, port int) *Server {
	return &Server{
		store: store,
		live:  live,
		port:  port,
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/outages", s.handleOutages)
	mux.HandleFunc("/api/live", s.handleLive)

	return mux
}

// Run serves until ctx is done and then shuts the server down
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("port", s.port).Info("web server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
