// Package server exposes a deck over HTTP and a WebSocket feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ScalpDeck/internal/deck"
	"ScalpDeck/internal/recorder"
)

// Journal reads back recorded decisions.
type Journal interface {
	RecentDecisions(symbol string, limit int) ([]recorder.DecisionRow, error)
}

// Server serves one deck.
type Server struct {
	Deck *deck.Deck
	// Journal is optional; without it /api/journal answers 404.
	Journal Journal

	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func New(d *deck.Deck, journal Journal, logger *zap.Logger) *Server {
	return &Server{
		Deck:     d,
		Journal:  journal,
		logger:   logger.With(zap.String("component", "server")),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/ws", s.handleFeed)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/view", s.handleView)
		r.Post("/watchlist", s.handleAddSymbol)
		r.Delete("/watchlist/{symbol}", s.handleRemoveSymbol)
		r.Post("/trade/{symbol}", s.handleTrade)
		r.Post("/autotrade/arm", s.handleArm)
		r.Post("/autotrade/disarm", s.handleDisarm)
		r.Put("/autotrade/interval", s.handleInterval)
		r.Get("/chart/{symbol}", s.handleChart)
		r.Get("/history", s.handleHistory)
		r.Get("/journal", s.handleJournal)
		r.Post("/agent/initialize", s.handleInitialize)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
