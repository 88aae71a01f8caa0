package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tgurley/smartline/internal/odds"
	"github.com/tgurley/smartline/internal/store"
	"github.com/tgurley/smartline/pkg/models"
)

// gameView is the JSON shape of a game
type gameView struct {
	GameID    string    `json:"game_id"`
	SportKey  string    `json:"sport_key"`
	Season    int       `json:"season"`
	Week      int       `json:"week"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Kickoff   time.Time `json:"kickoff"`
	Venue     string    `json:"venue"`
	Dome      bool      `json:"dome"`
	Severity  int       `json:"severity"`
	HomeScore *int      `json:"home_score"`
	AwayScore *int      `json:"away_score"`
	Status    string    `json:"status"`
}

func toGameView(g models.Game) gameView {
	return gameView{
		GameID:    g.GameID,
		SportKey:  g.SportKey,
		Season:    g.Season,
		Week:      g.Week,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		Kickoff:   g.Kickoff,
		Venue:     g.Venue,
		Dome:      g.Dome,
		Severity:  g.Severity,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Status:    g.Status,
	}
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	var f store.GameFilter
	q := r.URL.Query()

	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "season must be an integer")
			return
		}
		f.Season = n
	}
	if v := q.Get("week"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, "week must be a positive integer")
			return
		}
		f.Week = n
	}
	if v := q.Get("status"); v != "" {
		switch v {
		case models.GameStatusUpcoming, models.GameStatusLive, models.GameStatusFinal:
			f.Status = v
		default:
			badRequest(w, "status must be upcoming, live or final")
			return
		}
	}

	games, err := s.store.ListGames(r.Context(), f)
	if err != nil {
		serverError(w, err)
		return
	}

	views := make([]gameView, 0, len(games))
	for _, g := range games {
		views = append(views, toGameView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	g, err := s.store.GetGame(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGameView(*g))
}

// quote is one book's current price on an outcome
type quote struct {
	BookKey     string    `json:"book_key"`
	Price       int       `json:"price"`
	Decimal     float64   `json:"decimal"`
	ImpliedProb float64   `json:"implied_prob"`
	Point       *float64  `json:"point,omitempty"`
	Best        bool      `json:"best"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// outcomeLines is the price board for one outcome across books
type outcomeLines struct {
	OutcomeName     string  `json:"outcome_name"`
	FairProb        float64 `json:"fair_prob,omitempty"`
	BestEdgePercent float64 `json:"best_edge_percent,omitempty"`
	Quotes          []quote `json:"quotes"`
}

type linesResponse struct {
	GameID    string         `json:"game_id"`
	MarketKey string         `json:"market_key"`
	Outcomes  []outcomeLines `json:"outcomes"`
}

// handleGameLines is the line shopping board: every book's latest price
// per outcome, best price flagged, and for two-way markets the no-vig
// fair probability derived from the best available prices.
func (s *Server) handleGameLines(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	marketKey := r.URL.Query().Get("market")
	if marketKey == "" {
		marketKey = "h2h"
	}
	switch marketKey {
	case "h2h", "spreads", "totals":
	default:
		badRequest(w, "market must be h2h, spreads or totals")
		return
	}

	if _, err := s.store.GetGame(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	} else if err != nil {
		serverError(w, err)
		return
	}

	lines, err := s.store.LatestLines(r.Context(), id, marketKey)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildLinesResponse(id, marketKey, lines))
}

func buildLinesResponse(gameID, marketKey string, lines []models.RawOdds) linesResponse {
	resp := linesResponse{
		GameID:    gameID,
		MarketKey: marketKey,
		Outcomes:  make([]outcomeLines, 0),
	}

	byOutcome := make(map[string][]models.RawOdds)
	order := make([]string, 0)
	for _, l := range lines {
		if _, seen := byOutcome[l.OutcomeName]; !seen {
			order = append(order, l.OutcomeName)
		}
		byOutcome[l.OutcomeName] = append(byOutcome[l.OutcomeName], l)
	}

	for _, name := range order {
		resp.Outcomes = append(resp.Outcomes, buildOutcomeLines(name, byOutcome[name]))
	}

	// Two-way markets get no-vig fair probabilities off the best prices
	if len(resp.Outcomes) == 2 {
		a, b := &resp.Outcomes[0], &resp.Outcomes[1]
		ia, errA := odds.ImpliedProbability(bestPrice(a.Quotes))
		ib, errB := odds.ImpliedProbability(bestPrice(b.Quotes))
		if errA == nil && errB == nil {
			a.FairProb, b.FairProb = odds.RemoveVig2(ia, ib)
			if edge, err := odds.EdgePercent(bestPrice(a.Quotes), a.FairProb); err == nil {
				a.BestEdgePercent = edge
			}
			if edge, err := odds.EdgePercent(bestPrice(b.Quotes), b.FairProb); err == nil {
				b.BestEdgePercent = edge
			}
		}
	}

	return resp
}

func buildOutcomeLines(name string, lines []models.RawOdds) outcomeLines {
	out := outcomeLines{OutcomeName: name, Quotes: make([]quote, 0, len(lines))}

	for _, l := range lines {
		dec, err := odds.AmericanToDecimal(l.Price)
		if err != nil {
			continue
		}
		out.Quotes = append(out.Quotes, quote{
			BookKey:     l.BookKey,
			Price:       l.Price,
			Decimal:     dec,
			ImpliedProb: 1.0 / dec,
			Point:       l.Point,
			UpdatedAt:   l.VendorLastUpdate,
		})
	}

	// Best price first; the highest decimal pays the most
	sort.SliceStable(out.Quotes, func(i, j int) bool {
		return out.Quotes[i].Decimal > out.Quotes[j].Decimal
	})
	if len(out.Quotes) > 0 {
		best := out.Quotes[0].Decimal
		for i := range out.Quotes {
			out.Quotes[i].Best = out.Quotes[i].Decimal == best
		}
	}

	return out
}

func bestPrice(quotes []quote) int {
	if len(quotes) == 0 {
		return 0
	}
	return quotes[0].Price
}
