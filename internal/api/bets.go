package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/odds"
	"github.com/tgurley/smartline/internal/store"
	"github.com/tgurley/smartline/pkg/models"
)

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	result := r.URL.Query().Get("result")
	if result != "" && !validResult(result) {
		badRequest(w, "result must be pending, won, lost or push")
		return
	}

	bets, err := s.store.ListBets(r.Context(), result)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

type placeBetRequest struct {
	GameID      string          `json:"game_id"`
	MarketKey   string          `json:"market_key"`
	BookKey     string          `json:"book_key"`
	OutcomeName string          `json:"outcome_name"`
	Price       int             `json:"price"`
	Point       *float64        `json:"point,omitempty"`
	Stake       decimal.Decimal `json:"stake"`
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if msg := validateSelection(req.GameID, req.MarketKey, req.OutcomeName, req.Price, req.Point); msg != "" {
		badRequest(w, msg)
		return
	}
	if !req.Stake.IsPositive() {
		badRequest(w, "stake must be positive")
		return
	}
	if req.BookKey == "" {
		badRequest(w, "book_key is required")
		return
	}

	game, err := s.store.GetGame(r.Context(), req.GameID)
	if errors.Is(err, store.ErrNotFound) {
		badRequest(w, "unknown game_id")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	if game.Status == models.GameStatusFinal {
		badRequest(w, "game is already final")
		return
	}

	now := time.Now().UTC()
	bet := &models.Bet{
		ID:          uuid.New(),
		GameID:      req.GameID,
		MarketKey:   req.MarketKey,
		BookKey:     req.BookKey,
		OutcomeName: req.OutcomeName,
		Price:       req.Price,
		Point:       req.Point,
		Stake:       req.Stake,
		Result:      models.ResultPending,
		Payout:      decimal.Zero,
		PlacedAt:    now,
	}

	stakeTx := &models.Transaction{
		ID:        uuid.New(),
		Type:      models.TxStake,
		Amount:    req.Stake.Neg(),
		Note:      "bet " + bet.ID.String(),
		CreatedAt: now,
	}

	if err := s.store.PlaceBet(r.Context(), bet, stakeTx); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

func (s *Server) handleListParlays(w http.ResponseWriter, r *http.Request) {
	result := r.URL.Query().Get("result")
	if result != "" && !validResult(result) {
		badRequest(w, "result must be pending, won, lost or push")
		return
	}

	parlays, err := s.store.ListParlays(r.Context(), result)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parlays)
}

type parlayLegRequest struct {
	GameID      string   `json:"game_id"`
	MarketKey   string   `json:"market_key"`
	BookKey     string   `json:"book_key"`
	OutcomeName string   `json:"outcome_name"`
	Price       int      `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}

type placeParlayRequest struct {
	Stake decimal.Decimal    `json:"stake"`
	Legs  []parlayLegRequest `json:"legs"`
}

type parlayResponse struct {
	models.Parlay
	CombinedDecimal float64 `json:"combined_decimal"`
}

func (s *Server) handlePlaceParlay(w http.ResponseWriter, r *http.Request) {
	var req placeParlayRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if !req.Stake.IsPositive() {
		badRequest(w, "stake must be positive")
		return
	}
	if len(req.Legs) < 2 {
		badRequest(w, "a parlay needs at least two legs")
		return
	}

	seen := make(map[string]bool)
	legs := make([]models.ParlayLeg, 0, len(req.Legs))
	prices := make([]int, 0, len(req.Legs))

	for _, l := range req.Legs {
		if msg := validateSelection(l.GameID, l.MarketKey, l.OutcomeName, l.Price, l.Point); msg != "" {
			badRequest(w, msg)
			return
		}
		if seen[l.GameID] {
			badRequest(w, "parlay legs must be on distinct games")
			return
		}
		seen[l.GameID] = true

		game, err := s.store.GetGame(r.Context(), l.GameID)
		if errors.Is(err, store.ErrNotFound) {
			badRequest(w, "unknown game_id: "+l.GameID)
			return
		}
		if err != nil {
			serverError(w, err)
			return
		}
		if game.Status == models.GameStatusFinal {
			badRequest(w, "game is already final: "+l.GameID)
			return
		}

		legs = append(legs, models.ParlayLeg{
			GameID:      l.GameID,
			MarketKey:   l.MarketKey,
			BookKey:     l.BookKey,
			OutcomeName: l.OutcomeName,
			Price:       l.Price,
			Point:       l.Point,
			Result:      models.ResultPending,
		})
		prices = append(prices, l.Price)
	}

	combined, err := odds.ParlayDecimal(prices)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	now := time.Now().UTC()
	parlay := &models.Parlay{
		ID:       uuid.New(),
		Stake:    req.Stake,
		Legs:     legs,
		Result:   models.ResultPending,
		Payout:   decimal.Zero,
		PlacedAt: now,
	}

	stakeTx := &models.Transaction{
		ID:        uuid.New(),
		Type:      models.TxStake,
		Amount:    req.Stake.Neg(),
		Note:      "parlay " + parlay.ID.String(),
		CreatedAt: now,
	}

	if err := s.store.PlaceParlay(r.Context(), parlay, stakeTx); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, parlayResponse{Parlay: *parlay, CombinedDecimal: combined})
}

// validateSelection checks the shared fields of a bet or parlay leg;
// returns an empty string when valid
func validateSelection(gameID, marketKey, outcomeName string, price int, point *float64) string {
	if gameID == "" {
		return "game_id is required"
	}
	switch marketKey {
	case "h2h", "spreads", "totals":
	default:
		return "market_key must be h2h, spreads or totals"
	}
	if outcomeName == "" {
		return "outcome_name is required"
	}
	if _, err := odds.AmericanToDecimal(price); err != nil {
		return "price is not a valid American price"
	}
	if marketKey != "h2h" && point == nil {
		return "point is required for spreads and totals"
	}
	return ""
}

func validResult(result string) bool {
	switch result {
	case models.ResultPending, models.ResultWon, models.ResultLost, models.ResultPush:
		return true
	}
	return false
}
