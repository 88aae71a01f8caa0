package settle_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/tgurley/smartline/internal/settle"
)

// Start is a blocking poll loop on both background services, so callers
// must run it in its own goroutine. These tests pin down that it blocks
// until asked to stop, and that both stop paths actually unblock it.

func TestStatusUpdaterStartBlocksUntilCancel(t *testing.T) {
	db, err := sql.Open("postgres", "")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()

	u := settle.NewStatusUpdater(db, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		u.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Start returned before cancellation")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

func TestCapturerStartBlocksUntilStop(t *testing.T) {
	db, err := sql.Open("postgres", "")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()

	c := settle.NewCapturer(db, redis.NewClient(&redis.Options{}), time.Hour)

	done := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Start returned before Stop")
	case <-time.After(100 * time.Millisecond):
	}

	c.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
