package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bet results. A parlay shares the same result set.
const (
	ResultPending = "pending"
	ResultWon     = "won"
	ResultLost    = "lost"
	ResultPush    = "push"
)

// Bankroll transaction types.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxStake      = "stake"
	TxReturn     = "return"
)

// Bankroll unit modes (see Settings).
const (
	UnitFixed   = "fixed"
	UnitPercent = "percent"
)

// Bet is a single wager on one game outcome
type Bet struct {
	ID          uuid.UUID       `json:"id"`
	GameID      string          `json:"game_id"`
	MarketKey   string          `json:"market_key"`
	BookKey     string          `json:"book_key"`
	OutcomeName string          `json:"outcome_name"`
	Price       int             `json:"price"`
	Point       *float64        `json:"point,omitempty"`
	Stake       decimal.Decimal `json:"stake"`
	Result      string          `json:"result"`
	Payout      decimal.Decimal `json:"payout"`
	PlacedAt    time.Time       `json:"placed_at"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}

// ParlayLeg is one selection inside a parlay. Legs carry no stake of
// their own; the parlay settles only once every leg has a result.
type ParlayLeg struct {
	GameID      string   `json:"game_id"`
	MarketKey   string   `json:"market_key"`
	BookKey     string   `json:"book_key"`
	OutcomeName string   `json:"outcome_name"`
	Price       int      `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Result      string   `json:"result"`
}

// Parlay is a combined bet over multiple legs
type Parlay struct {
	ID        uuid.UUID       `json:"id"`
	Stake     decimal.Decimal `json:"stake"`
	Legs      []ParlayLeg     `json:"legs"`
	Result    string          `json:"result"`
	Payout    decimal.Decimal `json:"payout"`
	PlacedAt  time.Time       `json:"placed_at"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// Transaction is one bankroll ledger entry. Balance is the ledger sum.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"` // signed: stakes and withdrawals are negative
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Goal is a profit target over a date window
type Goal struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Settings is the singleton user configuration row
type Settings struct {
	UnitMode    string          `json:"unit_mode"` // fixed or percent
	UnitValue   decimal.Decimal `json:"unit_value"`
	DefaultBook string          `json:"default_book"`
	OddsFormat  string          `json:"odds_format"` // american or decimal
}
