package marketplace

import (
	"context"
	"fmt"
)

// USDRater abstracts the APE/USD spot dependency so the filter can be tested
// without hitting a price API.
type USDRater interface {
	APEUSD(ctx context.Context) (float64, error)
}

// Thresholds holds the suspicious-floor screens from config.
// A zero value for any field means that check is disabled.
type Thresholds struct {
	MinOwners    int
	MaxPumpRatio float64
	MaxFloorUSD  float64
}

type Filter struct {
	thresholds Thresholds
	rater      USDRater
}

func NewFilter(thresholds Thresholds, rater USDRater) *Filter {
	return &Filter{thresholds: thresholds, rater: rater}
}

// Evaluate screens one collection's stats. A non-empty reason means the floor
// is suspicious and must not be trusted; an error means the screen itself
// could not run.
func (f *Filter) Evaluate(ctx context.Context, stats FloorStats) (string, error) {
	if f.thresholds.MinOwners > 0 && stats.OwnerCount < f.thresholds.MinOwners {
		return fmt.Sprintf("owner count %d below minimum %d",
			stats.OwnerCount, f.thresholds.MinOwners), nil
	}

	if stats.Volume30d == 0 {
		return "no trading volume in the last 30 days", nil
	}

	if f.thresholds.MaxPumpRatio > 0 && stats.FloorSale30d > 0 &&
		stats.FloorPrice > f.thresholds.MaxPumpRatio*stats.FloorSale30d {
		return fmt.Sprintf("floor %.2f is %.0fx above last 30-day floor sale %.2f",
			stats.FloorPrice, stats.FloorPrice/stats.FloorSale30d, stats.FloorSale30d), nil
	}

	if f.thresholds.MaxFloorUSD > 0 && f.rater != nil {
		rate, err := f.rater.APEUSD(ctx)
		if err != nil {
			return "", fmt.Errorf("unable to verify USD ceiling: %w", err)
		}
		if usd := stats.FloorPrice * rate; usd > f.thresholds.MaxFloorUSD {
			return fmt.Sprintf("floor worth $%.2f exceeds ceiling $%.2f",
				usd, f.thresholds.MaxFloorUSD), nil
		}
	}

	return "", nil
}
