package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// InsertTransaction appends one ledger entry
func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO bankroll_transactions (id, type, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, tx.ID, tx.Type, tx.Amount, tx.Note, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func insertTransactionTx(ctx context.Context, dbTx *sql.Tx, t *models.Transaction) error {
	_, err := dbTx.ExecContext(ctx, `
		INSERT INTO bankroll_transactions (id, type, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Type, t.Amount, t.Note, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns ledger entries, newest first
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, type, amount, note, created_at
		FROM bankroll_transactions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

// Balance returns the ledger sum
func (s *Store) Balance(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM bankroll_transactions`

	var balance decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("query balance: %w", err)
	}
	return balance, nil
}

// BalancePoint is one step of the running balance series
type BalancePoint struct {
	At      time.Time       `json:"at"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceHistory returns the running balance after each ledger entry,
// oldest first; the series the SPA charts
func (s *Store) BalanceHistory(ctx context.Context) ([]BalancePoint, error) {
	query := `
		SELECT created_at, SUM(amount) OVER (ORDER BY created_at, id) AS balance
		FROM bankroll_transactions
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query balance history: %w", err)
	}
	defer rows.Close()

	points := make([]BalancePoint, 0)
	for rows.Next() {
		var p BalancePoint
		if err := rows.Scan(&p.At, &p.Balance); err != nil {
			return nil, fmt.Errorf("scan balance point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}
