package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/store"
	"github.com/tgurley/smartline/pkg/models"
)

type goalView struct {
	models.Goal
	Profit          decimal.Decimal `json:"profit"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	Achieved        bool            `json:"achieved"`
}

// goalProgress measures settled profit inside the goal window against the
// target
func (s *Server) goalProgress(ctx context.Context, g models.Goal) (goalView, error) {
	view := goalView{Goal: g}

	from := sql.NullTime{Time: g.StartDate, Valid: true}
	to := sql.NullTime{Time: g.EndDate, Valid: true}

	bets, err := s.store.SettledBetsBetween(ctx, from, to)
	if err != nil {
		return view, err
	}
	parlays, err := s.store.SettledParlaysBetween(ctx, from, to)
	if err != nil {
		return view, err
	}

	profit := decimal.Zero
	for _, b := range bets {
		profit = profit.Add(b.Payout).Sub(b.Stake)
	}
	for _, p := range parlays {
		profit = profit.Add(p.Payout).Sub(p.Stake)
	}

	view.Profit = profit
	view.ProgressPercent = progressPercent(profit, g.TargetAmount)
	view.Achieved = profit.GreaterThanOrEqual(g.TargetAmount)

	return view, nil
}

// progressPercent reports profit against target clamped to [0, 100]
func progressPercent(profit, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() || !profit.IsPositive() {
		return decimal.Zero
	}
	pct := profit.Div(target).Mul(decimal.NewFromInt(100)).Round(2)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListGoals(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		view, err := s.goalProgress(r.Context(), g)
		if err != nil {
			serverError(w, err)
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

type goalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
}

func (g goalRequest) validate() string {
	if g.Name == "" {
		return "name is required"
	}
	if !g.TargetAmount.IsPositive() {
		return "target_amount must be positive"
	}
	if !g.EndDate.After(g.StartDate) {
		return "end_date must be after start_date"
	}
	return ""
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	goal := &models.Goal{
		ID:           uuid.New(),
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.InsertGoal(r.Context(), goal); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		badRequest(w, "invalid goal id")
		return
	}

	goal, err := s.store.GetGoal(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	view, err := s.goalProgress(r.Context(), *goal)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		badRequest(w, "invalid goal id")
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	goal := &models.Goal{
		ID:           id,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}

	if err := s.store.UpdateGoal(r.Context(), goal); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	} else if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		badRequest(w, "invalid goal id")
		return
	}

	if err := s.store.DeleteGoal(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	} else if err != nil {
		serverError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
