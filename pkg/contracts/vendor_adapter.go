package contracts

import (
	"context"

	"github.com/tgurley/smartline/pkg/models"
)

// VendorAdapter defines the interface for fetching games and odds from
// external vendors. Keeping this stable lets the ingest pipeline swap The
// Odds API for an in-house feed without other changes.
type VendorAdapter interface {
	// FetchOdds retrieves odds for featured markets (h2h, spreads, totals)
	// Returns both games and odds to enable proper game upsertion
	FetchOdds(ctx context.Context, opts *models.FetchOddsOptions) (*models.FetchResult, error)

	// FetchGames retrieves upcoming games without odds (for discovery)
	FetchGames(ctx context.Context, sport string) ([]models.Game, error)

	// FetchScores retrieves recent scores for a sport, including completed games
	FetchScores(ctx context.Context, sport string, daysFrom int) ([]models.GameScore, error)

	// SupportsMarket checks if this adapter supports a given market
	SupportsMarket(market string) bool

	// GetRateLimits returns current rate limit information
	GetRateLimits() *models.RateLimits
}
