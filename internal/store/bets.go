package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// InsertBet stores a new bet
func (s *Store) InsertBet(ctx context.Context, b *models.Bet) error {
	query := `
		INSERT INTO bets (
			id, game_id, market_key, book_key, outcome_name,
			price, point, stake, result, payout, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.GameID, b.MarketKey, b.BookKey, b.OutcomeName,
		b.Price, b.Point, b.Stake, b.Result, b.Payout, b.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// PlaceBet stores a bet together with its stake ledger entry in one
// transaction, so the bankroll never shows a bet without its stake.
func (s *Store) PlaceBet(ctx context.Context, b *models.Bet, stake *models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bets (
			id, game_id, market_key, book_key, outcome_name,
			price, point, stake, result, payout, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, b.ID, b.GameID, b.MarketKey, b.BookKey, b.OutcomeName,
		b.Price, b.Point, b.Stake, b.Result, b.Payout, b.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}

	if err := insertTransactionTx(ctx, tx, stake); err != nil {
		return err
	}

	return tx.Commit()
}

// PlaceParlay stores a parlay with its stake ledger entry in one transaction
func (s *Store) PlaceParlay(ctx context.Context, p *models.Parlay, stake *models.Transaction) error {
	legs, err := json.Marshal(p.Legs)
	if err != nil {
		return fmt.Errorf("marshal parlay legs: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parlays (id, stake, legs, result, payout, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Stake, legs, p.Result, p.Payout, p.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert parlay: %w", err)
	}

	if err := insertTransactionTx(ctx, tx, stake); err != nil {
		return err
	}

	return tx.Commit()
}

// ListBets returns bets, optionally filtered by result, newest first
func (s *Store) ListBets(ctx context.Context, result string) ([]models.Bet, error) {
	query := `
		SELECT id, game_id, market_key, book_key, outcome_name,
		       price, point, stake, result, payout, placed_at, settled_at
		FROM bets
		WHERE ($1 = '' OR result = $1)
		ORDER BY placed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, result)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	bets := make([]models.Bet, 0)
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}

	return bets, rows.Err()
}

// SettledBetsBetween returns settled bets within [from, to), ordered by
// settlement time; used by the ROI and goal progress aggregates
func (s *Store) SettledBetsBetween(ctx context.Context, from, to sql.NullTime) ([]models.Bet, error) {
	query := `
		SELECT id, game_id, market_key, book_key, outcome_name,
		       price, point, stake, result, payout, placed_at, settled_at
		FROM bets
		WHERE result != 'pending'
		  AND (NOT $1::boolean OR settled_at >= $2)
		  AND (NOT $3::boolean OR settled_at < $4)
		ORDER BY settled_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, from.Valid, from.Time, to.Valid, to.Time)
	if err != nil {
		return nil, fmt.Errorf("query settled bets: %w", err)
	}
	defer rows.Close()

	bets := make([]models.Bet, 0)
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}

	return bets, rows.Err()
}

// SettledParlaysBetween returns settled parlays within [from, to)
func (s *Store) SettledParlaysBetween(ctx context.Context, from, to sql.NullTime) ([]models.Parlay, error) {
	query := `
		SELECT id, stake, legs, result, payout, placed_at, settled_at
		FROM parlays
		WHERE result != 'pending'
		  AND (NOT $1::boolean OR settled_at >= $2)
		  AND (NOT $3::boolean OR settled_at < $4)
		ORDER BY settled_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, from.Valid, from.Time, to.Valid, to.Time)
	if err != nil {
		return nil, fmt.Errorf("query settled parlays: %w", err)
	}
	defer rows.Close()

	parlays := make([]models.Parlay, 0)
	for rows.Next() {
		p, err := scanParlay(rows)
		if err != nil {
			return nil, err
		}
		parlays = append(parlays, p)
	}

	return parlays, rows.Err()
}

// WeekOutcome is one settled bet tagged with its game's season week
type WeekOutcome struct {
	Week   int
	Result string
	Stake  decimal.Decimal
	Payout decimal.Decimal
}

// SettledWeekOutcomes joins settled single bets to their games for the
// weekly breakdown. Parlays span games and carry no single week, so they
// are left out here.
func (s *Store) SettledWeekOutcomes(ctx context.Context, season int) ([]WeekOutcome, error) {
	query := `
		SELECT g.week, b.result, b.stake, b.payout
		FROM bets b
		JOIN games g ON g.game_id = b.game_id
		WHERE b.result != 'pending' AND g.season = $1
		ORDER BY g.week ASC
	`

	rows, err := s.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query week outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]WeekOutcome, 0)
	for rows.Next() {
		var o WeekOutcome
		if err := rows.Scan(&o.Week, &o.Result, &o.Stake, &o.Payout); err != nil {
			return nil, fmt.Errorf("scan week outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}

// InsertParlay stores a new parlay with its legs as JSONB
func (s *Store) InsertParlay(ctx context.Context, p *models.Parlay) error {
	legs, err := json.Marshal(p.Legs)
	if err != nil {
		return fmt.Errorf("marshal parlay legs: %w", err)
	}

	query := `
		INSERT INTO parlays (id, stake, legs, result, payout, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(ctx, query, p.ID, p.Stake, legs, p.Result, p.Payout, p.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert parlay: %w", err)
	}
	return nil
}

// ListParlays returns parlays, optionally filtered by result, newest first
func (s *Store) ListParlays(ctx context.Context, result string) ([]models.Parlay, error) {
	query := `
		SELECT id, stake, legs, result, payout, placed_at, settled_at
		FROM parlays
		WHERE ($1 = '' OR result = $1)
		ORDER BY placed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, result)
	if err != nil {
		return nil, fmt.Errorf("query parlays: %w", err)
	}
	defer rows.Close()

	parlays := make([]models.Parlay, 0)
	for rows.Next() {
		p, err := scanParlay(rows)
		if err != nil {
			return nil, err
		}
		parlays = append(parlays, p)
	}

	return parlays, rows.Err()
}

// GetParlay returns one parlay by id
func (s *Store) GetParlay(ctx context.Context, id uuid.UUID) (*models.Parlay, error) {
	query := `
		SELECT id, stake, legs, result, payout, placed_at, settled_at
		FROM parlays
		WHERE id = $1
	`

	p, err := scanParlay(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanBet(r rowScanner) (models.Bet, error) {
	var b models.Bet
	var point sql.NullFloat64
	var settledAt sql.NullTime

	err := r.Scan(&b.ID, &b.GameID, &b.MarketKey, &b.BookKey, &b.OutcomeName,
		&b.Price, &point, &b.Stake, &b.Result, &b.Payout, &b.PlacedAt, &settledAt)
	if err != nil {
		return b, err
	}

	if point.Valid {
		v := point.Float64
		b.Point = &v
	}
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}

	return b, nil
}

func scanParlay(r rowScanner) (models.Parlay, error) {
	var p models.Parlay
	var legs []byte
	var settledAt sql.NullTime

	err := r.Scan(&p.ID, &p.Stake, &legs, &p.Result, &p.Payout, &p.PlacedAt, &settledAt)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(legs, &p.Legs); err != nil {
		return p, fmt.Errorf("unmarshal parlay legs: %w", err)
	}
	if settledAt.Valid {
		t := settledAt.Time
		p.SettledAt = &t
	}

	return p, nil
}
