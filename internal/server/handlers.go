package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_sentinel/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Portfolio sentinel is running"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

type positionPayload struct {
	StopLoss decimal.Decimal `json:"stopLoss"`
	Quantity decimal.Decimal `json:"quantity"`
}

type alpacaKeysPayload struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type updatePortfolioRequest struct {
	UserID     string                     `json:"userId"`
	Stocks     map[string]positionPayload `json:"stocks"`
	AlpacaKeys *alpacaKeysPayload         `json:"alpacaKeys"`
}

// handleUpdatePortfolio replaces the user's portfolio wholesale. Validation
// failures leave existing state untouched.
func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req updatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.UserID == "" || len(req.Stocks) == 0 {
		writeError(w, http.StatusBadRequest, "missing userId or stocks")
		return
	}

	var backend *models.ExecutionBackend
	if req.AlpacaKeys != nil {
		if req.AlpacaKeys.Key == "" || req.AlpacaKeys.Secret == "" {
			writeError(w, http.StatusBadRequest, "alpacaKeys requires both key and secret")
			return
		}
		backend = &models.ExecutionBackend{
			Kind:   models.BackendBrokerage,
			Key:    req.AlpacaKeys.Key,
			Secret: req.AlpacaKeys.Secret,
		}
	}

	positions := make(map[string]*models.Position, len(req.Stocks))
	for symbol, p := range req.Stocks {
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "empty stock symbol")
			return
		}
		if p.StopLoss.LessThanOrEqual(decimal.Zero) {
			writeError(w, http.StatusBadRequest, "stopLoss must be positive for "+symbol)
			return
		}
		qty := p.Quantity
		if qty.LessThanOrEqual(decimal.Zero) {
			qty = decimal.NewFromInt(1)
		}
		positions[symbol] = &models.Position{
			Symbol:   symbol,
			StopLoss: p.StopLoss,
			Quantity: qty,
		}
	}

	s.portfolios.Replace(req.UserID, models.Portfolio{
		UserID:    req.UserID,
		Positions: positions,
		Backend:   backend,
	})

	s.log.Info().Str("user", req.UserID).Int("positions", len(positions)).Msg("portfolio replaced")
	writeJSON(w, http.StatusOK, map[string]string{"message": "portfolio saved"})
}

type priceEntry struct {
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	LastUpdate   *time.Time       `json:"lastUpdate"`
	StopLoss     decimal.Decimal  `json:"stopLoss"`
	Sold         bool             `json:"sold"`
}

// handlePrices reports monitored prices keyed off the current portfolio's
// symbols only; snapshots for symbols dropped by a replacement are never
// served.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	entry, ok := s.portfolios.Get(userID)
	if !ok || !s.prices.HasAny(userID) {
		writeError(w, http.StatusNotFound, "no portfolio or prices found for user")
		return
	}

	stocks := make(map[string]priceEntry)
	for symbol, pos := range entry.Positions() {
		pe := priceEntry{StopLoss: pos.StopLoss, Sold: pos.Sold}
		if snap, found := s.prices.Lookup(userID, symbol); found {
			price := snap.Price
			at := snap.Time
			pe.CurrentPrice = &price
			pe.LastUpdate = &at
		}
		stocks[symbol] = pe
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId": userID,
		"stocks": stocks,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	unread := s.queue.Unread(userID)
	if unread == nil {
		unread = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": unread})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.queue.Acknowledge(r.PathValue("userId"), r.PathValue("notificationId"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
