package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgurley/smartline/pkg/models"
)

// GameFilter narrows ListGames results. Zero values mean "no filter".
type GameFilter struct {
	Season int
	Week   int
	Status string
}

// ListGames returns games matching the filter, ordered by kickoff
func (s *Store) ListGames(ctx context.Context, f GameFilter) ([]models.Game, error) {
	query := `
		SELECT game_id, sport_key, season, week, home_team, away_team,
		       kickoff, venue, dome, severity, home_score, away_score, status
		FROM games
		WHERE ($1 = 0 OR season = $1)
		  AND ($2 = 0 OR week = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY kickoff ASC
	`

	rows, err := s.db.QueryContext(ctx, query, f.Season, f.Week, f.Status)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// GetGame returns one game by id
func (s *Store) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	query := `
		SELECT game_id, sport_key, season, week, home_team, away_team,
		       kickoff, venue, dome, severity, home_score, away_score, status
		FROM games
		WHERE game_id = $1
	`

	row := s.db.QueryRowContext(ctx, query, gameID)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FinalOutdoorGames returns completed outdoor games for a season, the
// input for weather-impact analytics. Dome games are excluded here rather
// than in the aggregation so every caller gets the same population.
func (s *Store) FinalOutdoorGames(ctx context.Context, season int) ([]models.Game, error) {
	query := `
		SELECT game_id, sport_key, season, week, home_team, away_team,
		       kickoff, venue, dome, severity, home_score, away_score, status
		FROM games
		WHERE status = 'final'
		  AND dome = false
		  AND home_score IS NOT NULL
		  AND away_score IS NOT NULL
		  AND ($1 = 0 OR season = $1)
		ORDER BY kickoff ASC
	`

	rows, err := s.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("query outdoor games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

// LatestLines returns the current odds for a game, optionally narrowed to
// one market, ordered for stable line shopping output
func (s *Store) LatestLines(ctx context.Context, gameID, marketKey string) ([]models.RawOdds, error) {
	query := `
		SELECT game_id, sport_key, market_key, book_key, outcome_name,
		       price, point, vendor_last_update, received_at
		FROM odds_raw
		WHERE is_latest = true
		  AND game_id = $1
		  AND ($2 = '' OR market_key = $2)
		ORDER BY market_key, outcome_name, book_key
	`

	rows, err := s.db.QueryContext(ctx, query, gameID, marketKey)
	if err != nil {
		return nil, fmt.Errorf("query latest lines: %w", err)
	}
	defer rows.Close()

	lines := make([]models.RawOdds, 0)
	for rows.Next() {
		var o models.RawOdds
		var point sql.NullFloat64
		if err := rows.Scan(&o.GameID, &o.SportKey, &o.MarketKey, &o.BookKey,
			&o.OutcomeName, &o.Price, &point, &o.VendorLastUpdate, &o.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if point.Valid {
			v := point.Float64
			o.Point = &v
		}
		lines = append(lines, o)
	}

	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(r rowScanner) (models.Game, error) {
	var g models.Game
	var home, away sql.NullInt64

	err := r.Scan(&g.GameID, &g.SportKey, &g.Season, &g.Week, &g.HomeTeam,
		&g.AwayTeam, &g.Kickoff, &g.Venue, &g.Dome, &g.Severity,
		&home, &away, &g.Status)
	if err != nil {
		return g, err
	}

	if home.Valid {
		v := int(home.Int64)
		g.HomeScore = &v
	}
	if away.Valid {
		v := int(away.Int64)
		g.AwayScore = &v
	}

	return g, nil
}
