package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tgurley/smartline/internal/analytics"
	football "github.com/tgurley/smartline/sports/football_nfl"
)

func seasonParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("season")
	if v == "" {
		season, _ := football.SeasonWeek(time.Now().UTC())
		return season, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 2000 {
		return 0, errors.New("season must be a four digit year")
	}
	return n, nil
}

// handleWeatherAnalytics regresses total points against weather severity
// over the season's outdoor finals
func (s *Server) handleWeatherAnalytics(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	games, err := s.store.FinalOutdoorGames(r.Context(), season)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.WeatherImpact(games))
}

// handleROI aggregates settled performance, optionally windowed by
// settlement time (?from=&to= as RFC 3339 or YYYY-MM-DD)
func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	from, err := timeParam(r, "from")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	to, err := timeParam(r, "to")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	bets, err := s.store.SettledBetsBetween(r.Context(), from, to)
	if err != nil {
		serverError(w, err)
		return
	}
	parlays, err := s.store.SettledParlaysBetween(r.Context(), from, to)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.ComputeROI(bets, parlays))
}

// handleTrend serves the running-profit series with its fitted trend line,
// windowed like the ROI endpoint
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	from, err := timeParam(r, "from")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	to, err := timeParam(r, "to")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	bets, err := s.store.SettledBetsBetween(r.Context(), from, to)
	if err != nil {
		serverError(w, err)
		return
	}
	parlays, err := s.store.SettledParlaysBetween(r.Context(), from, to)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.ProfitTrend(bets, parlays))
}

func timeParam(r *http.Request, key string) (sql.NullTime, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return sql.NullTime{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return sql.NullTime{Time: t, Valid: true}, nil
		}
	}
	return sql.NullTime{}, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", key)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	rows, err := s.store.SettledWeekOutcomes(r.Context(), season)
	if err != nil {
		serverError(w, err)
		return
	}

	outcomes := make([]analytics.WeekOutcome, 0, len(rows))
	for _, row := range rows {
		outcomes = append(outcomes, analytics.WeekOutcome{
			Week:   row.Week,
			Result: row.Result,
			Stake:  row.Stake,
			Payout: row.Payout,
		})
	}

	writeJSON(w, http.StatusOK, analytics.WeeklyBreakdown(outcomes))
}
