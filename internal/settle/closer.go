package settle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Capturer monitors games and captures closing lines when they go live.
// Closing lines anchor the line-movement history shown for each game.
type Capturer struct {
	db           *sql.DB
	redisClient  *redis.Client
	pollInterval time.Duration
	stopChan     chan struct{}
}

// NewCapturer creates a new closing line capturer
func NewCapturer(db *sql.DB, redisClient *redis.Client, pollInterval time.Duration) *Capturer {
	return &Capturer{
		db:           db,
		redisClient:  redisClient,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start begins monitoring for games going live
func (c *Capturer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	slog.Info("closing line capturer started")

	// Initial check immediately
	if err := c.captureClosingLines(ctx); err != nil {
		slog.Error("initial closing line capture failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := c.captureClosingLines(ctx); err != nil {
				slog.Error("closing line capture failed", "error", err)
			}
		case <-c.stopChan:
			slog.Info("closing line capturer stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop gracefully stops the capturer
func (c *Capturer) Stop() {
	close(c.stopChan)
}

// captureClosingLines finds games that just went live and captures their
// closing lines
func (c *Capturer) captureClosingLines(ctx context.Context) error {
	query := `
		SELECT DISTINCT g.game_id
		FROM games g
		WHERE g.status = 'live'
		  AND g.game_id NOT IN (SELECT DISTINCT game_id FROM closing_lines)
		  AND g.kickoff BETWEEN NOW() - INTERVAL '15 minutes' AND NOW() + INTERVAL '5 minutes'
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query live games: %w", err)
	}
	defer rows.Close()

	var liveGames []string
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return fmt.Errorf("scan game: %w", err)
		}
		liveGames = append(liveGames, gameID)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	for _, gameID := range liveGames {
		if err := c.captureGameClosingLines(ctx, gameID); err != nil {
			slog.Error("capturing closing lines failed", "game", gameID, "error", err)
			continue
		}
	}

	return nil
}

// captureGameClosingLines snapshots all current odds for a game as its
// closing lines
func (c *Capturer) captureGameClosingLines(ctx context.Context, gameID string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// NULL points (h2h) become 0 to satisfy the NOT NULL column. The
	// conflict target must match the table's unique constraint exactly
	insertQuery := `
		INSERT INTO closing_lines (game_id, sport_key, market_key, book_key, outcome_name, closing_price, point, closed_at)
		SELECT game_id, sport_key, market_key, book_key, outcome_name, price, COALESCE(point, 0), NOW()
		FROM odds_raw
		WHERE game_id = $1 AND is_latest = true
		ON CONFLICT (game_id, market_key, book_key, outcome_name) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, insertQuery, gameID)
	if err != nil {
		return fmt.Errorf("insert closing lines: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Publish to Redis stream; lines are captured either way
	if err := c.publishClosingLineEvent(ctx, gameID); err != nil {
		slog.Warn("failed to publish closing line event", "error", err)
	}

	slog.Info("captured closing lines", "game", gameID, "lines", rowsAffected)

	return nil
}

// publishClosingLineEvent publishes a message to the closing lines stream
func (c *Capturer) publishClosingLineEvent(ctx context.Context, gameID string) error {
	streamName := "closing_lines.captured"

	values := map[string]interface{}{
		"game_id":     gameID,
		"captured_at": time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: values,
	}).Result()

	if err != nil {
		return fmt.Errorf("xadd to stream: %w", err)
	}

	return nil
}
