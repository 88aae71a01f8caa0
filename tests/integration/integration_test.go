//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/delta"
	"github.com/tgurley/smartline/internal/ingest"
	"github.com/tgurley/smartline/internal/notify"
	"github.com/tgurley/smartline/internal/registry"
	"github.com/tgurley/smartline/internal/settle"
	"github.com/tgurley/smartline/internal/store"
	"github.com/tgurley/smartline/internal/writer"
	"github.com/tgurley/smartline/pkg/models"
	"github.com/tgurley/smartline/pkg/testutil"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	return getEnv("TEST_DATABASE_URL", "postgres://localhost:5432/smartline_test?sslmode=disable")
}

func openTestDeps(t *testing.T) (*sql.DB, *redis.Client) {
	t.Helper()

	db, err := sql.Open("postgres", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("skipping integration test, postgres unavailable: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1, // test DB
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping integration test, redis unavailable: %v", err)
	}

	return db, redisClient
}

// TestEndToEnd_IngestDetectWrite runs odds through delta detection, the
// batched writer and the latest-lines read path.
func TestEndToEnd_IngestDetectWrite(t *testing.T) {
	ctx := context.Background()

	db, redisClient := openTestDeps(t)
	defer db.Close()
	defer redisClient.Close()

	redisClient.FlushDB(ctx)

	gameID := "it_game_" + uuid.NewString()
	game := testutil.NewTestGame(gameID, 1, 0, 0)
	game.HomeScore = nil
	game.AwayScore = nil
	game.Status = models.GameStatusUpcoming
	game.Kickoff = time.Now().Add(2 * time.Hour)

	engine := delta.NewEngine(redisClient, 30*time.Second)
	w := writer.NewWriter(db, redisClient, nil)

	odd := testutil.NewTestOdd(gameID, "h2h", "draftkings", "Buffalo Bills", -110, nil)

	deltas, err := engine.DetectChanges(ctx, []models.RawOdds{odd})
	if err != nil {
		t.Fatalf("DetectChanges failed: %v", err)
	}
	if len(deltas) != 1 || deltas[0].ChangeType != delta.ChangeTypeNew {
		t.Fatalf("expected one new delta, got %+v", deltas)
	}

	if err := w.WriteWithGames(ctx, []models.Game{game}, []models.RawOdds{odd}); err != nil {
		t.Fatalf("WriteWithGames failed: %v", err)
	}
	if err := engine.UpdateCache(ctx, []models.RawOdds{odd}); err != nil {
		t.Fatalf("UpdateCache failed: %v", err)
	}

	// A price move should surface as a price delta, and flip is_latest
	moved := odd
	moved.Price = -130
	deltas, err = engine.DetectChanges(ctx, []models.RawOdds{moved})
	if err != nil {
		t.Fatalf("DetectChanges failed: %v", err)
	}
	if len(deltas) != 1 || deltas[0].ChangeType != delta.ChangeTypePriceOnly {
		t.Fatalf("expected one price delta, got %+v", deltas)
	}

	if err := w.WriteWithGames(ctx, nil, []models.RawOdds{moved}); err != nil {
		t.Fatalf("WriteWithGames failed: %v", err)
	}

	st := store.New(db)
	lines, err := st.LatestLines(ctx, gameID, "h2h")
	if err != nil {
		t.Fatalf("LatestLines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected a single latest line, got %d", len(lines))
	}
	if lines[0].Price != -130 {
		t.Errorf("latest price = %d, want -130", lines[0].Price)
	}
}

// TestEndToEnd_SettlementFlow places a bet, applies a final score, and
// checks the result plus the bankroll return entry.
func TestEndToEnd_SettlementFlow(t *testing.T) {
	ctx := context.Background()

	db, redisClient := openTestDeps(t)
	defer db.Close()
	defer redisClient.Close()

	st := store.New(db)

	gameID := "it_settle_" + uuid.NewString()
	game := testutil.NewTestGame(gameID, 0, 0, 0)
	game.HomeScore = nil
	game.AwayScore = nil
	game.Status = models.GameStatusLive
	game.Kickoff = time.Now().Add(-2 * time.Hour)

	w := writer.NewWriter(db, redisClient, nil)
	if err := w.WriteWithGames(ctx, []models.Game{game}, nil); err != nil {
		t.Fatalf("WriteWithGames failed: %v", err)
	}

	balanceBefore, err := st.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	now := time.Now().UTC()
	bet := &models.Bet{
		ID:          uuid.New(),
		GameID:      gameID,
		MarketKey:   "h2h",
		BookKey:     "draftkings",
		OutcomeName: game.HomeTeam,
		Price:       100,
		Stake:       decimal.NewFromInt(100),
		Result:      models.ResultPending,
		Payout:      decimal.Zero,
		PlacedAt:    now,
	}
	stakeTx := &models.Transaction{
		ID:        uuid.New(),
		Type:      models.TxStake,
		Amount:    bet.Stake.Neg(),
		CreatedAt: now,
	}
	if err := st.PlaceBet(ctx, bet, stakeTx); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	settler := settle.NewSettler(db)
	err = settler.ApplyScores(ctx, "americanfootball_nfl", []models.GameScore{
		{GameID: gameID, HomeScore: 27, AwayScore: 20, Completed: true},
	})
	if err != nil {
		t.Fatalf("ApplyScores failed: %v", err)
	}

	bets, err := st.ListBets(ctx, models.ResultWon)
	if err != nil {
		t.Fatalf("ListBets failed: %v", err)
	}
	var settled *models.Bet
	for i := range bets {
		if bets[i].ID == bet.ID {
			settled = &bets[i]
		}
	}
	if settled == nil {
		t.Fatal("bet was not settled as won")
	}
	if !settled.Payout.Equal(decimal.NewFromInt(200)) {
		t.Errorf("payout = %s, want 200 at even money", settled.Payout)
	}

	// Stake out, winnings in: net +100 against the starting balance
	balanceAfter, err := st.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !balanceAfter.Sub(balanceBefore).Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance moved by %s, want +100", balanceAfter.Sub(balanceBefore))
	}
}

// TestEndToEnd_ClosingLineCapture runs the capturer against a live game
// and checks the latest lines land in closing_lines.
func TestEndToEnd_ClosingLineCapture(t *testing.T) {
	ctx := context.Background()

	db, redisClient := openTestDeps(t)
	defer db.Close()
	defer redisClient.Close()

	gameID := "it_close_" + uuid.NewString()
	game := testutil.NewTestGame(gameID, 0, 0, 0)
	game.HomeScore = nil
	game.AwayScore = nil
	game.Status = models.GameStatusLive
	game.Kickoff = time.Now().Add(-5 * time.Minute)

	w := writer.NewWriter(db, redisClient, nil)
	odds := []models.RawOdds{
		testutil.NewTestOdd(gameID, "h2h", "draftkings", game.HomeTeam, -120, nil),
		testutil.NewTestOdd(gameID, "totals", "draftkings", "Over", -110, testutil.Float64(47.5)),
	}
	if err := w.WriteWithGames(ctx, []models.Game{game}, odds); err != nil {
		t.Fatalf("WriteWithGames failed: %v", err)
	}

	capturer := settle.NewCapturer(db, redisClient, 100*time.Millisecond)
	go capturer.Start(ctx)
	defer capturer.Stop()

	deadline := time.Now().Add(5 * time.Second)
	var captured int
	for time.Now().Before(deadline) {
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM closing_lines WHERE game_id = $1`, gameID).Scan(&captured)
		if err != nil {
			t.Fatalf("count closing lines: %v", err)
		}
		if captured == len(odds) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if captured != len(odds) {
		t.Fatalf("captured %d closing lines, want %d", captured, len(odds))
	}

	// h2h has no point; the snapshot stores it as 0
	var point decimal.Decimal
	err := db.QueryRowContext(ctx,
		`SELECT point FROM closing_lines WHERE game_id = $1 AND market_key = 'h2h'`, gameID).Scan(&point)
	if err != nil {
		t.Fatalf("read h2h closing line: %v", err)
	}
	if !point.IsZero() {
		t.Errorf("h2h point = %s, want 0", point)
	}
}

type stubSport struct{}

func (stubSport) GetSportKey() string                    { return "americanfootball_nfl" }
func (stubSport) GetDisplayName() string                 { return "NFL Football" }
func (stubSport) GetFeaturedMarkets() []string           { return []string{"h2h"} }
func (stubSport) GetRegions() []string                   { return []string{"us"} }
func (stubSport) GetFeaturedPollInterval() time.Duration { return 100 * time.Millisecond }
func (stubSport) GetScoresPollInterval() time.Duration   { return time.Hour }
func (stubSport) GetScoresDaysFrom() int                 { return 1 }
func (stubSport) SeasonWeek(time.Time) (int, int)        { return 2025, 1 }
func (stubSport) ValidateOdds(models.RawOdds) error      { return nil }
func (stubSport) ClassifyVenue(string) (string, bool)    { return "Highmark Stadium", false }
func (stubSport) VenueCoords(string) (float64, float64, bool) {
	return 0, 0, false
}

// stubAdapter serves the same line every poll but reschedules the game
// after the first call, like a vendor moving kickoff
type stubAdapter struct {
	mu    sync.Mutex
	calls int
	game  models.Game
	odd   models.RawOdds
}

func (a *stubAdapter) FetchOdds(_ context.Context, _ *models.FetchOddsOptions) (*models.FetchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	g := a.game
	if a.calls > 1 {
		g.Kickoff = g.Kickoff.Add(30 * time.Minute)
	}
	return &models.FetchResult{Games: []models.Game{g}, Odds: []models.RawOdds{a.odd}}, nil
}

func (a *stubAdapter) FetchGames(context.Context, string) ([]models.Game, error) {
	return nil, nil
}

func (a *stubAdapter) FetchScores(context.Context, string, int) ([]models.GameScore, error) {
	return nil, nil
}

func (a *stubAdapter) SupportsMarket(string) bool        { return true }
func (a *stubAdapter) GetRateLimits() *models.RateLimits { return nil }

// TestEndToEnd_DeltaFreePollRefreshesGames checks that game enrichment is
// persisted even when no line moved between polls.
func TestEndToEnd_DeltaFreePollRefreshesGames(t *testing.T) {
	ctx := context.Background()

	db, redisClient := openTestDeps(t)
	defer db.Close()
	defer redisClient.Close()

	gameID := "it_refresh_" + uuid.NewString()
	game := testutil.NewTestGame(gameID, 0, 0, 0)
	game.HomeScore = nil
	game.AwayScore = nil
	game.Status = models.GameStatusUpcoming
	game.Kickoff = time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)

	adapter := &stubAdapter{
		game: game,
		odd:  testutil.NewTestOdd(gameID, "h2h", "draftkings", game.HomeTeam, -110, nil),
	}

	sportRegistry := registry.NewSportRegistry()
	if err := sportRegistry.Register(stubSport{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	sched := ingest.NewScheduler(db, redisClient, adapter, sportRegistry,
		nil, notify.NopNotifier{}, nil, ingest.Options{CacheTTL: 30 * time.Second})
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sched.Stop()

	// The second poll carries no line change; the rescheduled kickoff
	// must land anyway
	want := game.Kickoff.Add(30 * time.Minute)
	deadline := time.Now().Add(5 * time.Second)
	var kickoff time.Time
	for time.Now().Before(deadline) {
		err := db.QueryRowContext(ctx,
			`SELECT kickoff FROM games WHERE game_id = $1`, gameID).Scan(&kickoff)
		if err == nil && kickoff.UTC().Equal(want) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("kickoff = %v, want %v after a delta-free poll", kickoff.UTC(), want)
}
