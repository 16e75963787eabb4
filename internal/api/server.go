// Package api exposes the booking core over a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"maqraa/internal/availability"
	"maqraa/internal/booking"
	"maqraa/internal/slots"
)

// HTTPServer serves the booking endpoints.
type HTTPServer struct {
	catalog   *slots.Ref
	cache     *availability.Cache
	submitter *booking.Submitter
	sessions  *booking.SessionStore
	log       *zerolog.Logger
	srv       *http.Server
}

// NewHTTPServer wires the handlers.
func NewHTTPServer(
	port int,
	catalog *slots.Ref,
	cache *availability.Cache,
	submitter *booking.Submitter,
	sessions *booking.SessionStore,
	log *zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		catalog:   catalog,
		cache:     cache,
		submitter: submitter,
		sessions:  sessions,
		log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/slots", s.handleSlots)
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/selection", s.handleCreateSelection)
	mux.HandleFunc("/api/selection/toggle", s.handleToggleDay)
	mux.HandleFunc("/api/bookings", s.handleSubmit)
	mux.HandleFunc("/api/export", s.handleExport)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until the context is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctxShutdown)
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
