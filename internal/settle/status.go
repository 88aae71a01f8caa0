package settle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// StatusUpdater transitions game status based on kickoff time. Scores from
// the vendor mark games final; this is the clock-driven fallback for the
// upcoming -> live edge and for games whose scores never arrive.
type StatusUpdater struct {
	db           *sql.DB
	pollInterval time.Duration
	stopChan     chan struct{}
}

// NewStatusUpdater creates a new game status updater
func NewStatusUpdater(db *sql.DB, pollInterval time.Duration) *StatusUpdater {
	return &StatusUpdater{
		db:           db,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start begins monitoring and updating game statuses
func (s *StatusUpdater) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	slog.Info("game status updater started")

	// Initial update immediately
	if err := s.updateStatuses(ctx); err != nil {
		slog.Error("initial status update failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.updateStatuses(ctx); err != nil {
				slog.Error("status update failed", "error", err)
			}
		case <-s.stopChan:
			slog.Info("game status updater stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop gracefully stops the updater
func (s *StatusUpdater) Stop() {
	close(s.stopChan)
}

// updateStatuses updates game statuses based on current time
func (s *StatusUpdater) updateStatuses(ctx context.Context) error {
	// upcoming -> live at kickoff
	liveQuery := `
		UPDATE games
		SET status = 'live'
		WHERE status = 'upcoming'
		  AND kickoff <= NOW()
	`

	liveResult, err := s.db.ExecContext(ctx, liveQuery)
	if err != nil {
		return fmt.Errorf("update to live: %w", err)
	}

	liveCount, _ := liveResult.RowsAffected()
	if liveCount > 0 {
		slog.Info("games marked live", "count", liveCount)
	}

	// live -> final fallback for games the scores endpoint missed.
	// NFL games run ~3.5 hours; 5 hours is a safe buffer including OT.
	finalQuery := `
		UPDATE games
		SET status = 'final'
		WHERE status = 'live'
		  AND kickoff < NOW() - INTERVAL '5 hours'
	`

	finalResult, err := s.db.ExecContext(ctx, finalQuery)
	if err != nil {
		return fmt.Errorf("update to final: %w", err)
	}

	finalCount, _ := finalResult.RowsAffected()
	if finalCount > 0 {
		slog.Info("games marked final without scores", "count", finalCount)
	}

	return nil
}
