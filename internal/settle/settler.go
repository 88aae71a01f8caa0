package settle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// Settler applies vendor scores and settles pending bets and parlays.
// Each game settles in one transaction: score write, bet results and the
// bankroll return entries land together or not at all.
type Settler struct {
	db *sql.DB
}

// NewSettler creates a new settler
func NewSettler(db *sql.DB) *Settler {
	return &Settler{db: db}
}

// ApplyScores records final scores and settles everything riding on those
// games. Implements ingest.ScoreSink.
func (s *Settler) ApplyScores(ctx context.Context, sportKey string, scores []models.GameScore) error {
	finalized := make([]string, 0, len(scores))

	for _, sc := range scores {
		if !sc.Completed {
			continue
		}

		done, err := s.finalizeGame(ctx, sc)
		if err != nil {
			slog.Error("finalize game failed", "game", sc.GameID, "error", err)
			continue
		}
		if done {
			finalized = append(finalized, sc.GameID)
		}
	}

	if len(finalized) == 0 {
		return nil
	}

	if err := s.settleParlays(ctx); err != nil {
		return fmt.Errorf("settle parlays: %w", err)
	}

	slog.Info("scores applied", "sport", sportKey, "finalized", len(finalized))
	return nil
}

// finalizeGame writes the score and settles single bets on the game.
// Returns false when the game was already final (nothing to do).
func (s *Settler) finalizeGame(ctx context.Context, sc models.GameScore) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Write the score; skip games already final so settlement runs once
	row := tx.QueryRowContext(ctx, `
		UPDATE games
		SET home_score = $2, away_score = $3, status = 'final'
		WHERE game_id = $1 AND status != 'final'
		RETURNING game_id, home_team, away_team
	`, sc.GameID, sc.HomeScore, sc.AwayScore)

	var g models.Game
	if err := row.Scan(&g.GameID, &g.HomeTeam, &g.AwayTeam); err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("update game score: %w", err)
	}

	home, away := sc.HomeScore, sc.AwayScore
	g.HomeScore = &home
	g.AwayScore = &away
	g.Status = models.GameStatusFinal

	if err := s.settleSingleBets(ctx, tx, g); err != nil {
		return false, fmt.Errorf("settle single bets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// settleSingleBets grades and settles all pending bets on one final game
func (s *Settler) settleSingleBets(ctx context.Context, tx *sql.Tx, g models.Game) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, market_key, outcome_name, point, price, stake
		FROM bets
		WHERE game_id = $1 AND result = 'pending'
		FOR UPDATE
	`, g.GameID)
	if err != nil {
		return fmt.Errorf("query pending bets: %w", err)
	}
	defer rows.Close()

	type pendingBet struct {
		id    uuid.UUID
		sel   Selection
		price int
		stake decimal.Decimal
	}

	var pending []pendingBet
	for rows.Next() {
		var b pendingBet
		var point sql.NullFloat64
		if err := rows.Scan(&b.id, &b.sel.MarketKey, &b.sel.OutcomeName, &point, &b.price, &b.stake); err != nil {
			return fmt.Errorf("scan pending bet: %w", err)
		}
		if point.Valid {
			v := point.Float64
			b.sel.Point = &v
		}
		pending = append(pending, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("pending bets rows: %w", err)
	}

	now := time.Now().UTC()

	for _, b := range pending {
		result, err := GradeSelection(b.sel, g)
		if err != nil {
			slog.Error("cannot grade bet, leaving pending", "bet", b.id, "error", err)
			continue
		}

		payout, err := SinglePayout(b.stake, b.price, result)
		if err != nil {
			return fmt.Errorf("compute payout: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE bets SET result = $2, payout = $3, settled_at = $4 WHERE id = $1
		`, b.id, result, payout, now); err != nil {
			return fmt.Errorf("update bet: %w", err)
		}

		if payout.IsPositive() {
			if err := insertReturn(ctx, tx, payout, fmt.Sprintf("bet %s %s", b.id, result), now); err != nil {
				return err
			}
		}
	}

	return nil
}

// settleParlays re-evaluates every pending parlay after new finals landed
func (s *Settler) settleParlays(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, stake, legs FROM parlays WHERE result = 'pending' FOR UPDATE
	`)
	if err != nil {
		return fmt.Errorf("query pending parlays: %w", err)
	}
	defer rows.Close()

	type pendingParlay struct {
		id    uuid.UUID
		stake decimal.Decimal
		legs  []models.ParlayLeg
	}

	var pending []pendingParlay
	for rows.Next() {
		var p pendingParlay
		var legsJSON []byte
		if err := rows.Scan(&p.id, &p.stake, &legsJSON); err != nil {
			return fmt.Errorf("scan pending parlay: %w", err)
		}
		if err := json.Unmarshal(legsJSON, &p.legs); err != nil {
			return fmt.Errorf("unmarshal parlay legs: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("pending parlays rows: %w", err)
	}

	now := time.Now().UTC()

	for _, p := range pending {
		changed, err := s.gradeLegs(ctx, tx, p.legs)
		if err != nil {
			return fmt.Errorf("grade parlay legs: %w", err)
		}

		result, payout, err := SettleParlay(p.stake, p.legs)
		if err != nil {
			return fmt.Errorf("settle parlay %s: %w", p.id, err)
		}

		if result == models.ResultPending {
			if changed {
				// Persist graded legs even while the ticket stays open
				if err := updateParlayLegs(ctx, tx, p.id, p.legs); err != nil {
					return err
				}
			}
			continue
		}

		legsJSON, err := json.Marshal(p.legs)
		if err != nil {
			return fmt.Errorf("marshal parlay legs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE parlays SET legs = $2, result = $3, payout = $4, settled_at = $5 WHERE id = $1
		`, p.id, legsJSON, result, payout, now); err != nil {
			return fmt.Errorf("update parlay: %w", err)
		}

		if payout.IsPositive() {
			if err := insertReturn(ctx, tx, payout, fmt.Sprintf("parlay %s %s", p.id, result), now); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// gradeLegs grades pending legs whose games are final, mutating legs in
// place. Reports whether any leg changed.
func (s *Settler) gradeLegs(ctx context.Context, tx *sql.Tx, legs []models.ParlayLeg) (bool, error) {
	changed := false

	for i := range legs {
		if legs[i].Result != models.ResultPending {
			continue
		}

		row := tx.QueryRowContext(ctx, `
			SELECT game_id, home_team, away_team, home_score, away_score, status
			FROM games
			WHERE game_id = $1 AND status = 'final'
		`, legs[i].GameID)

		var g models.Game
		var home, away sql.NullInt64
		err := row.Scan(&g.GameID, &g.HomeTeam, &g.AwayTeam, &home, &away, &g.Status)
		if err == sql.ErrNoRows {
			continue // game not final yet
		}
		if err != nil {
			return changed, fmt.Errorf("query leg game: %w", err)
		}
		if !home.Valid || !away.Valid {
			continue
		}

		hs, as := int(home.Int64), int(away.Int64)
		g.HomeScore = &hs
		g.AwayScore = &as

		result, err := GradeSelection(Selection{
			MarketKey:   legs[i].MarketKey,
			OutcomeName: legs[i].OutcomeName,
			Point:       legs[i].Point,
		}, g)
		if err != nil {
			slog.Error("cannot grade parlay leg, leaving pending",
				"game", legs[i].GameID, "error", err)
			continue
		}

		legs[i].Result = result
		changed = true
	}

	return changed, nil
}

func updateParlayLegs(ctx context.Context, tx *sql.Tx, id uuid.UUID, legs []models.ParlayLeg) error {
	legsJSON, err := json.Marshal(legs)
	if err != nil {
		return fmt.Errorf("marshal parlay legs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE parlays SET legs = $2 WHERE id = $1`, id, legsJSON); err != nil {
		return fmt.Errorf("update parlay legs: %w", err)
	}
	return nil
}

// insertReturn posts a bankroll return entry for a settled wager
func insertReturn(ctx context.Context, tx *sql.Tx, amount decimal.Decimal, note string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bankroll_transactions (id, type, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), models.TxReturn, amount, note, at)
	if err != nil {
		return fmt.Errorf("insert return transaction: %w", err)
	}
	return nil
}
