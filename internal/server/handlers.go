package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/chart"
	"ScalpDeck/internal/feed"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/watchlist"
)

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

type intervalRequest struct {
	Interval string `json:"interval"`
}

type chartResponse struct {
	Symbol  string             `json:"symbol"`
	Points  []model.ChartPoint `json:"points"`
	Summary *chart.Summary     `json:"summary,omitempty"`
}

type historyResponse struct {
	model.TradeHistory
	Summary model.TradeSummary `json:"summary"`
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Deck.View())
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	syms, err := s.Deck.AddSymbol(req.Symbol)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"watchlist": syms})
}

func (s *Server) handleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
	syms := s.Deck.RemoveSymbol(chi.URLParam(r, "symbol"))
	writeJSON(w, http.StatusOK, map[string][]string{"watchlist": syms})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	sd, err := s.Deck.Trade(r.Context(), symbol)
	switch {
	case errors.Is(err, watchlist.ErrEmptySymbol):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		s.logger.Warn("manual trade failed", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, sd)
	}
}

func (s *Server) handleArm(w http.ResponseWriter, _ *http.Request) {
	s.Deck.AutoTrader.Arm()
	writeJSON(w, http.StatusOK, s.Deck.View().AutoTrade)
}

func (s *Server) handleDisarm(w http.ResponseWriter, _ *http.Request) {
	s.Deck.AutoTrader.Disarm()
	writeJSON(w, http.StatusOK, s.Deck.View().AutoTrade)
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	var req intervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := s.Deck.SetInterval(req.Interval); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Deck.View().AutoTrade)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := model.NormalizeSymbol(chi.URLParam(r, "symbol"))
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid n %q", raw))
			return
		}
		n = v
	}
	s.Deck.Chart.Select(symbol)
	resp := chartResponse{Symbol: symbol, Points: s.Deck.Chart.For(symbol, n)}
	if sum, ok := chart.Summarize(resp.Points); ok {
		resp.Summary = &sum
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.Deck.API.History(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{TradeHistory: h, Summary: h.Summary()})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		writeError(w, http.StatusNotFound, errors.New("journal disabled"))
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = v
	}
	rows, err := s.Journal.RecentDecisions(model.NormalizeSymbol(r.URL.Query().Get("symbol")), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req agent.InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	ack, err := s.Deck.Initialize(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.Deck.Events.Subscribe(64)
	defer s.Deck.Events.Unsubscribe(sub)

	// Clients only listen; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.Deck.Events.Unsubscribe(sub)
				return
			}
		}
	}()

	if err := conn.WriteJSON(feed.Event{Type: feed.TypeView, Data: s.Deck.View()}); err != nil {
		return
	}
	for evt := range sub.C() {
		if err := conn.WriteJSON(evt); err != nil {
			return
		}
	}
}
