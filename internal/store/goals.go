package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tgurley/smartline/pkg/models"
)

// InsertGoal stores a new goal
func (s *Store) InsertGoal(ctx context.Context, g *models.Goal) error {
	query := `
		INSERT INTO goals (id, name, target_amount, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		g.ID, g.Name, g.TargetAmount, g.StartDate, g.EndDate, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// ListGoals returns all goals, newest first
func (s *Store) ListGoals(ctx context.Context) ([]models.Goal, error) {
	query := `
		SELECT id, name, target_amount, start_date, end_date, created_at
		FROM goals
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.StartDate, &g.EndDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// GetGoal returns one goal by id
func (s *Store) GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	query := `
		SELECT id, name, target_amount, start_date, end_date, created_at
		FROM goals
		WHERE id = $1
	`

	var g models.Goal
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.TargetAmount, &g.StartDate, &g.EndDate, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query goal: %w", err)
	}
	return &g, nil
}

// UpdateGoal replaces a goal's editable fields
func (s *Store) UpdateGoal(ctx context.Context, g *models.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, target_amount = $3, start_date = $4, end_date = $5
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, g.ID, g.Name, g.TargetAmount, g.StartDate, g.EndDate)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGoal removes a goal
func (s *Store) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
