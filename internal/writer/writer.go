package writer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/tgurley/smartline/pkg/models"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 5 * time.Second
	streamKeyFormat      = "lines.raw.%s" // lines.raw.americanfootball_nfl
)

// Writer batches Postgres writes and publishes line updates to Redis
// Streams. Implements the write-through cache pattern.
type Writer struct {
	db    *sql.DB
	redis *redis.Client

	batchSize     int
	flushInterval time.Duration

	// Optional book allowlist; empty means accept every book
	allowedBooks map[string]bool

	buffer []models.RawOdds
	mu     sync.Mutex

	flushTicker *time.Ticker
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// StreamMessage represents a line update published to a Redis Stream
type StreamMessage struct {
	GameID           string    `json:"game_id"`
	SportKey         string    `json:"sport_key"`
	MarketKey        string    `json:"market_key"`
	BookKey          string    `json:"book_key"`
	OutcomeName      string    `json:"outcome_name"`
	Price            int       `json:"price"`
	Point            *float64  `json:"point,omitempty"`
	VendorLastUpdate time.Time `json:"vendor_last_update"`
	ReceivedAt       time.Time `json:"received_at"`
	GameStatus       string    `json:"game_status"`
}

// NewWriter creates a new batching writer
func NewWriter(db *sql.DB, redisClient *redis.Client, allowedBooks []string) *Writer {
	allow := make(map[string]bool, len(allowedBooks))
	for _, b := range allowedBooks {
		allow[strings.ToLower(b)] = true
	}

	return &Writer{
		db:            db,
		redis:         redisClient,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		allowedBooks:  allow,
		buffer:        make([]models.RawOdds, 0, defaultBatchSize),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the background flush ticker
func (w *Writer) Start(ctx context.Context) {
	w.flushTicker = time.NewTicker(w.flushInterval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.flushTicker.C:
				if err := w.Flush(ctx); err != nil {
					slog.Error("writer flush failed", "error", err)
				}
			case <-w.stopChan:
				w.flushTicker.Stop()
				// Final flush on shutdown
				_ = w.Flush(ctx)
				return
			case <-ctx.Done():
				w.flushTicker.Stop()
				return
			}
		}
	}()
}

// Stop gracefully shuts down the writer
func (w *Writer) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

// Write adds odds to the buffer and flushes if batch size is reached
func (w *Writer) Write(ctx context.Context, batch []models.RawOdds) error {
	w.mu.Lock()
	w.buffer = append(w.buffer, batch...)
	shouldFlush := len(w.buffer) >= w.batchSize
	w.mu.Unlock()

	if shouldFlush {
		return w.Flush(ctx)
	}

	return nil
}

// WriteWithGames writes games and odds together in one transaction
// (bypasses the buffer so game rows land before their odds)
func (w *Writer) WriteWithGames(ctx context.Context, games []models.Game, batch []models.RawOdds) error {
	if len(games) == 0 && len(batch) == 0 {
		return nil
	}

	batch = w.filterBooks(batch)

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(games) > 0 {
		if err := w.upsertGames(ctx, tx, games); err != nil {
			return fmt.Errorf("upsert games: %w", err)
		}
	}

	if len(batch) > 0 {
		if err := w.upsertBooksFromOdds(ctx, tx, batch); err != nil {
			return fmt.Errorf("upsert books: %w", err)
		}

		// Flip previous rows, then insert new rows with is_latest = true
		if err := w.updatePreviousOdds(ctx, tx, batch); err != nil {
			return fmt.Errorf("update previous odds: %w", err)
		}

		if err := w.insertNewOdds(ctx, tx, batch); err != nil {
			return fmt.Errorf("insert new odds: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Publish to Redis Streams after the DB write; the DB is the source
	// of truth, so stream failures only get logged
	if len(batch) > 0 {
		if err := w.publishToStream(ctx, batch, games); err != nil {
			slog.Error("publish to stream failed", "error", err)
		}
	}

	return nil
}

// Flush writes buffered odds to Postgres and publishes to Redis Streams
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.buffer) == 0 {
		w.mu.Unlock()
		return nil
	}

	// Swap buffer
	batch := w.buffer
	w.buffer = make([]models.RawOdds, 0, w.batchSize)
	w.mu.Unlock()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := w.updatePreviousOdds(ctx, tx, batch); err != nil {
		return fmt.Errorf("update previous odds: %w", err)
	}

	if err := w.insertNewOdds(ctx, tx, batch); err != nil {
		return fmt.Errorf("insert new odds: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Games are not available in Flush context, pass nil
	if err := w.publishToStream(ctx, batch, nil); err != nil {
		slog.Error("publish to stream failed", "error", err)
	}

	return nil
}

// updatePreviousOdds sets is_latest = false for existing odds
func (w *Writer) updatePreviousOdds(ctx context.Context, tx *sql.Tx, batch []models.RawOdds) error {
	if len(batch) == 0 {
		return nil
	}

	query := `
		UPDATE odds_raw
		SET is_latest = false
		WHERE is_latest = true
		  AND (game_id, market_key, book_key, outcome_name) IN (
			SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::text[]), UNNEST($4::text[])
		  )
	`

	gameIDs := make([]string, len(batch))
	marketKeys := make([]string, len(batch))
	bookKeys := make([]string, len(batch))
	outcomeNames := make([]string, len(batch))

	for i, odd := range batch {
		gameIDs[i] = odd.GameID
		marketKeys[i] = odd.MarketKey
		bookKeys[i] = odd.BookKey
		outcomeNames[i] = odd.OutcomeName
	}

	_, err := tx.ExecContext(ctx, query, pq.Array(gameIDs), pq.Array(marketKeys), pq.Array(bookKeys), pq.Array(outcomeNames))
	return err
}

// insertNewOdds inserts new odds rows with is_latest = true
func (w *Writer) insertNewOdds(ctx context.Context, tx *sql.Tx, batch []models.RawOdds) error {
	if len(batch) == 0 {
		return nil
	}

	query := `
		INSERT INTO odds_raw (
			game_id, sport_key, market_key, book_key, outcome_name,
			price, point, vendor_last_update, received_at, is_latest
		)
		SELECT * FROM UNNEST(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::int[], $7::decimal[], $8::timestamptz[], $9::timestamptz[], $10::boolean[]
		)
	`

	gameIDs := make([]string, len(batch))
	sportKeys := make([]string, len(batch))
	marketKeys := make([]string, len(batch))
	bookKeys := make([]string, len(batch))
	outcomeNames := make([]string, len(batch))
	prices := make([]int, len(batch))
	points := make([]*float64, len(batch))
	vendorUpdates := make([]time.Time, len(batch))
	receivedAts := make([]time.Time, len(batch))
	isLatests := make([]bool, len(batch))

	for i, odd := range batch {
		gameIDs[i] = odd.GameID
		sportKeys[i] = odd.SportKey
		marketKeys[i] = odd.MarketKey
		bookKeys[i] = odd.BookKey
		outcomeNames[i] = odd.OutcomeName
		prices[i] = odd.Price
		points[i] = odd.Point
		vendorUpdates[i] = odd.VendorLastUpdate
		receivedAts[i] = odd.ReceivedAt
		isLatests[i] = true
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(gameIDs), pq.Array(sportKeys), pq.Array(marketKeys), pq.Array(bookKeys), pq.Array(outcomeNames),
		pq.Array(prices), pq.Array(points), pq.Array(vendorUpdates), pq.Array(receivedAts), pq.Array(isLatests),
	)

	return err
}

// upsertGames inserts or updates games, preserving weather severity and
// scores already written by enrichment/settlement
func (w *Writer) upsertGames(ctx context.Context, tx *sql.Tx, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}

	query := `
		INSERT INTO games (
			game_id, sport_key, season, week, home_team, away_team,
			kickoff, venue, dome, severity, status
		)
		SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::int[]),
		       UNNEST($4::int[]), UNNEST($5::text[]), UNNEST($6::text[]),
		       UNNEST($7::timestamptz[]), UNNEST($8::text[]), UNNEST($9::boolean[]),
		       UNNEST($10::int[]), UNNEST($11::text[])
		ON CONFLICT (game_id)
		DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			kickoff = EXCLUDED.kickoff,
			venue = EXCLUDED.venue,
			dome = EXCLUDED.dome,
			severity = EXCLUDED.severity
	`

	gameIDs := make([]string, len(games))
	sportKeys := make([]string, len(games))
	seasons := make([]int, len(games))
	weeks := make([]int, len(games))
	homeTeams := make([]string, len(games))
	awayTeams := make([]string, len(games))
	kickoffs := make([]time.Time, len(games))
	venues := make([]string, len(games))
	domes := make([]bool, len(games))
	severities := make([]int, len(games))
	statuses := make([]string, len(games))

	for i, g := range games {
		gameIDs[i] = g.GameID
		sportKeys[i] = g.SportKey
		seasons[i] = g.Season
		weeks[i] = g.Week
		homeTeams[i] = g.HomeTeam
		awayTeams[i] = g.AwayTeam
		kickoffs[i] = g.Kickoff
		venues[i] = g.Venue
		domes[i] = g.Dome
		severities[i] = g.Severity
		statuses[i] = g.Status
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(gameIDs), pq.Array(sportKeys), pq.Array(seasons), pq.Array(weeks),
		pq.Array(homeTeams), pq.Array(awayTeams), pq.Array(kickoffs),
		pq.Array(venues), pq.Array(domes), pq.Array(severities), pq.Array(statuses),
	)

	return err
}

// upsertBooksFromOdds extracts unique books from odds and inserts them if
// they don't exist. Seed data provides display details later.
func (w *Writer) upsertBooksFromOdds(ctx context.Context, tx *sql.Tx, batch []models.RawOdds) error {
	if len(batch) == 0 {
		return nil
	}

	bookMap := make(map[string]string) // book_key -> sport_key
	for _, odd := range batch {
		bookMap[odd.BookKey] = odd.SportKey
	}

	query := `
		INSERT INTO books (book_key, display_name, active, regions, supported_sports)
		SELECT UNNEST($1::text[]), UNNEST($2::text[]), true, ARRAY['us'], ARRAY[UNNEST($3::text[])]
		ON CONFLICT (book_key) DO NOTHING
	`

	bookKeys := make([]string, 0, len(bookMap))
	displayNames := make([]string, 0, len(bookMap))
	sportKeys := make([]string, 0, len(bookMap))

	for bookKey, sportKey := range bookMap {
		bookKeys = append(bookKeys, bookKey)
		displayNames = append(displayNames, capitalizeFirst(bookKey))
		sportKeys = append(sportKeys, sportKey)
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(bookKeys), pq.Array(displayNames), pq.Array(sportKeys),
	)

	return err
}

// publishToStream publishes line updates to per-sport Redis Streams
func (w *Writer) publishToStream(ctx context.Context, batch []models.RawOdds, games []models.Game) error {
	if len(batch) == 0 {
		return nil
	}

	// Build game status lookup map
	statusMap := make(map[string]string)
	for _, g := range games {
		statusMap[g.GameID] = g.Status
	}

	// Group by sport for separate streams
	bySport := make(map[string][]models.RawOdds)
	for _, odd := range batch {
		bySport[odd.SportKey] = append(bySport[odd.SportKey], odd)
	}

	for sportKey, sportOdds := range bySport {
		streamKey := fmt.Sprintf(streamKeyFormat, sportKey)

		pipe := w.redis.Pipeline()

		for _, odd := range sportOdds {
			status := statusMap[odd.GameID]
			if status == "" {
				status = models.GameStatusUpcoming
			}

			msg := StreamMessage{
				GameID:           odd.GameID,
				SportKey:         odd.SportKey,
				MarketKey:        odd.MarketKey,
				BookKey:          odd.BookKey,
				OutcomeName:      odd.OutcomeName,
				Price:            odd.Price,
				Point:            odd.Point,
				VendorLastUpdate: odd.VendorLastUpdate,
				ReceivedAt:       odd.ReceivedAt,
				GameStatus:       status,
			}

			msgJSON, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal stream message: %w", err)
			}

			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: streamKey,
				Values: map[string]interface{}{
					"data": msgJSON,
				},
			})
		}

		_, err := pipe.Exec(ctx)
		if err != nil {
			return fmt.Errorf("redis pipeline exec for stream: %w", err)
		}
	}

	return nil
}

// filterBooks drops odds from books outside the configured allowlist
func (w *Writer) filterBooks(batch []models.RawOdds) []models.RawOdds {
	if len(w.allowedBooks) == 0 {
		return batch
	}

	filtered := make([]models.RawOdds, 0, len(batch))
	for _, odd := range batch {
		if w.allowedBooks[strings.ToLower(odd.BookKey)] {
			filtered = append(filtered, odd)
		}
	}

	return filtered
}

// capitalizeFirst capitalizes the first letter of a string
func capitalizeFirst(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}
