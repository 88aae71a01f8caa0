package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// defaultSettings is served until the user saves their own row.
func defaultSettings() *models.Settings {
	return &models.Settings{
		UnitMode:    models.UnitFixed,
		UnitValue:   decimal.NewFromInt(25),
		DefaultBook: "",
		OddsFormat:  "american",
	}
}

// GetSettings returns the settings row, or defaults when none saved yet
func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT unit_mode, unit_value, default_book, odds_format
		FROM settings
		WHERE id = 1
	`

	var st models.Settings
	err := s.db.QueryRowContext(ctx, query).Scan(
		&st.UnitMode, &st.UnitValue, &st.DefaultBook, &st.OddsFormat)
	if err == sql.ErrNoRows {
		return defaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &st, nil
}

// PutSettings upserts the singleton settings row
func (s *Store) PutSettings(ctx context.Context, st *models.Settings) error {
	query := `
		INSERT INTO settings (id, unit_mode, unit_value, default_book, odds_format)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			unit_mode = EXCLUDED.unit_mode,
			unit_value = EXCLUDED.unit_value,
			default_book = EXCLUDED.default_book,
			odds_format = EXCLUDED.odds_format
	`

	_, err := s.db.ExecContext(ctx, query, st.UnitMode, st.UnitValue, st.DefaultBook, st.OddsFormat)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
