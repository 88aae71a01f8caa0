package football_nfl

// FeaturedMarkets returns the list of featured (mainline) markets for the NFL
func FeaturedMarkets() []string {
	return []string{"h2h", "spreads", "totals"}
}

// MapVendorMarketKey translates vendor market keys to internal keys
// For The Odds API these are already 1:1, but this allows for future adapters
func MapVendorMarketKey(vendorKey string) string {
	return vendorKey
}

// IsFeaturedMarket returns true if the market is one we poll and settle
func IsFeaturedMarket(marketKey string) bool {
	for _, m := range FeaturedMarkets() {
		if m == marketKey {
			return true
		}
	}
	return false
}
