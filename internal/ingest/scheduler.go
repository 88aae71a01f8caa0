// Package ingest orchestrates the vendor polling pipeline:
// fetch -> enrich -> delta -> write -> cache update -> alert.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tgurley/smartline/adapters/weather"
	"github.com/tgurley/smartline/internal/delta"
	"github.com/tgurley/smartline/internal/notify"
	"github.com/tgurley/smartline/internal/registry"
	"github.com/tgurley/smartline/internal/writer"
	"github.com/tgurley/smartline/pkg/contracts"
	"github.com/tgurley/smartline/pkg/models"
)

// ScoreSink receives vendor scores; the settlement service implements it
type ScoreSink interface {
	ApplyScores(ctx context.Context, sportKey string, scores []models.GameScore) error
}

// Options configures the scheduler
type Options struct {
	CacheTTL          time.Duration
	MovementThreshold float64  // percent; 0 disables movement alerts
	AllowedBooks      []string // empty accepts every book
}

// Scheduler orchestrates polling for all registered sports
type Scheduler struct {
	adapter     contracts.VendorAdapter
	deltaEngine *delta.Engine
	writer      *writer.Writer
	registry    *registry.SportRegistry
	weather     *weather.Client
	notifier    notify.Notifier
	scores      ScoreSink

	movementThreshold float64

	// severity per game, refreshed on an interval so every poll does not
	// hit the forecast API
	severityMu    sync.Mutex
	severityCache map[string]severityEntry

	stopChan chan struct{}
	wg       sync.WaitGroup
}

type severityEntry struct {
	severity  int
	fetchedAt time.Time
}

const severityRefresh = 6 * time.Hour

// NewScheduler creates a new polling scheduler
func NewScheduler(
	db *sql.DB,
	redisClient *redis.Client,
	adapter contracts.VendorAdapter,
	sportRegistry *registry.SportRegistry,
	weatherClient *weather.Client,
	notifier notify.Notifier,
	scores ScoreSink,
	opts Options,
) *Scheduler {
	return &Scheduler{
		adapter:           adapter,
		deltaEngine:       delta.NewEngine(redisClient, opts.CacheTTL),
		writer:            writer.NewWriter(db, redisClient, opts.AllowedBooks),
		registry:          sportRegistry,
		weather:           weatherClient,
		notifier:          notifier,
		scores:            scores,
		movementThreshold: opts.MovementThreshold,
		severityCache:     make(map[string]severityEntry),
		stopChan:          make(chan struct{}),
	}
}

// Start begins polling for all registered sports
func (s *Scheduler) Start(ctx context.Context) error {
	s.writer.Start(ctx)

	sports := s.registry.GetAll()
	if len(sports) == 0 {
		return fmt.Errorf("no sports registered")
	}

	for _, sport := range sports {
		s.wg.Add(1)
		go func(sport contracts.SportModule) {
			defer s.wg.Done()
			s.pollSportFeatured(ctx, sport)
		}(sport)

		s.wg.Add(1)
		go func(sport contracts.SportModule) {
			defer s.wg.Done()
			s.pollSportScores(ctx, sport)
		}(sport)

		slog.Info("started polling", "sport", sport.GetDisplayName())
	}

	return nil
}

// Stop gracefully shuts down the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.writer.Stop()
}

// pollSportFeatured polls featured markets for a specific sport
func (s *Scheduler) pollSportFeatured(ctx context.Context, sport contracts.SportModule) {
	// Initial poll immediately
	if err := s.fetchAndProcess(ctx, sport); err != nil {
		slog.Error("initial featured poll failed", "sport", sport.GetDisplayName(), "error", err)
	}

	ticker := time.NewTicker(sport.GetFeaturedPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.fetchAndProcess(ctx, sport); err != nil {
				slog.Error("featured poll failed", "sport", sport.GetDisplayName(), "error", err)
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// pollSportScores polls the vendor scores endpoint and forwards results to
// the settlement service
func (s *Scheduler) pollSportScores(ctx context.Context, sport contracts.SportModule) {
	ticker := time.NewTicker(sport.GetScoresPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			scores, err := s.adapter.FetchScores(ctx, sport.GetSportKey(), sport.GetScoresDaysFrom())
			if err != nil {
				slog.Error("scores poll failed", "sport", sport.GetDisplayName(), "error", err)
				continue
			}

			if len(scores) == 0 || s.scores == nil {
				continue
			}

			if err := s.scores.ApplyScores(ctx, sport.GetSportKey(), scores); err != nil {
				slog.Error("apply scores failed", "sport", sport.GetDisplayName(), "error", err)
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fetchAndProcess executes the full pipeline for one poll
func (s *Scheduler) fetchAndProcess(ctx context.Context, sport contracts.SportModule) error {
	start := time.Now()

	// Step 1: Fetch odds from vendor (includes games)
	result, err := s.adapter.FetchOdds(ctx, &models.FetchOddsOptions{
		Sport:   sport.GetSportKey(),
		Regions: sport.GetRegions(),
		Markets: sport.GetFeaturedMarkets(),
	})
	if err != nil {
		return fmt.Errorf("fetch odds: %w", err)
	}

	if len(result.Odds) == 0 {
		return nil // No odds available
	}

	// Step 2: Enrich games with season/week, venue and weather severity
	games := s.enrichGames(ctx, sport, result.Games)

	// Step 3: Drop odds that fail sport validation
	valid := result.Odds[:0]
	for _, odd := range result.Odds {
		if err := sport.ValidateOdds(odd); err != nil {
			slog.Warn("dropping invalid odd", "error", err,
				"game", odd.GameID, "market", odd.MarketKey, "book", odd.BookKey)
			continue
		}
		valid = append(valid, odd)
	}

	// Step 4: Detect deltas (Redis-first)
	deltas, err := s.deltaEngine.DetectChanges(ctx, valid)
	if err != nil {
		return fmt.Errorf("detect changes: %w", err)
	}

	if len(deltas) == 0 {
		// Lines unchanged; still persist refreshed severity and
		// season/week enrichment
		if err := s.writer.WriteWithGames(ctx, games, nil); err != nil {
			return fmt.Errorf("write games: %w", err)
		}
		return nil
	}

	// Step 5: Write deltas to Postgres (includes game upsert)
	deltaOdds := make([]models.RawOdds, len(deltas))
	for i, d := range deltas {
		deltaOdds[i] = d.Odd
	}

	if err := s.writer.WriteWithGames(ctx, games, deltaOdds); err != nil {
		return fmt.Errorf("write deltas: %w", err)
	}

	// Step 6: Update Redis cache (write-through); cache rebuilds itself,
	// so failures only get logged
	if err := s.deltaEngine.UpdateCache(ctx, deltaOdds); err != nil {
		slog.Error("update cache failed", "error", err)
	}

	// Step 7: Alert on large price moves
	s.alertMovements(games, deltas)

	slog.Info("poll complete",
		"sport", sport.GetSportKey(),
		"games", len(games),
		"odds", len(valid),
		"deltas", len(deltas),
		"took", time.Since(start))

	return nil
}

// enrichGames fills season/week, venue classification and weather severity
func (s *Scheduler) enrichGames(ctx context.Context, sport contracts.SportModule, games []models.Game) []models.Game {
	enriched := make([]models.Game, len(games))

	for i, g := range games {
		g.Season, g.Week = sport.SeasonWeek(g.Kickoff)
		g.Venue, g.Dome = sport.ClassifyVenue(g.HomeTeam)

		// Dome games never carry weather severity
		if !g.Dome {
			g.Severity = s.severityFor(ctx, sport, g)
		}

		enriched[i] = g
	}

	return enriched
}

// severityFor returns the cached severity for a game, refreshing from the
// forecast API when stale
func (s *Scheduler) severityFor(ctx context.Context, sport contracts.SportModule, g models.Game) int {
	s.severityMu.Lock()
	entry, ok := s.severityCache[g.GameID]
	s.severityMu.Unlock()

	if ok && time.Since(entry.fetchedAt) < severityRefresh {
		return entry.severity
	}

	lat, lon, found := sport.VenueCoords(g.HomeTeam)
	if !found || s.weather == nil {
		return 0
	}

	severity := s.weather.SeverityFor(ctx, lat, lon, g.Kickoff)

	s.severityMu.Lock()
	s.severityCache[g.GameID] = severityEntry{severity: severity, fetchedAt: time.Now()}
	s.severityMu.Unlock()

	return severity
}

// alertMovements forwards price moves above the threshold to the notifier
func (s *Scheduler) alertMovements(games []models.Game, deltas []delta.Delta) {
	if s.notifier == nil || s.movementThreshold <= 0 {
		return
	}

	labels := make(map[string]models.Game, len(games))
	for _, g := range games {
		labels[g.GameID] = g
	}

	for _, d := range deltas {
		pct := d.MovementPercent()
		if pct < s.movementThreshold {
			continue
		}

		g := labels[d.Odd.GameID]
		s.notifier.NotifyMovement(notify.LineMovement{
			GameLabel:       fmt.Sprintf("%s @ %s", g.AwayTeam, g.HomeTeam),
			MarketKey:       d.Odd.MarketKey,
			BookKey:         d.Odd.BookKey,
			OutcomeName:     d.Odd.OutcomeName,
			OldPrice:        *d.OldPrice,
			NewPrice:        d.Odd.Price,
			MovementPercent: pct,
			Kickoff:         g.Kickoff,
		})
	}
}
