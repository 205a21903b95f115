// Package impact selects the change points whose market impact is worth
// showing and formats their statistics.
package impact

import (
	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

// RankOptions controls which impact records count as significant.
type RankOptions struct {
	PriceThresholdPct      decimal.Decimal
	VolatilityThresholdPct decimal.Decimal
	Limit                  int
}

// DefaultRankOptions returns the dashboard defaults: 5% price, 20% volatility, top 5.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		PriceThresholdPct:      decimal.NewFromInt(5),
		VolatilityThresholdPct: decimal.NewFromInt(20),
		Limit:                  5,
	}
}

// Significant reports whether either change exceeds its threshold.
func (o RankOptions) Significant(r model.ImpactRecord) bool {
	return r.PriceChangePct.Abs().GreaterThan(o.PriceThresholdPct) ||
		r.VolatilityChangePct.Abs().GreaterThan(o.VolatilityThresholdPct)
}

// Rank returns the first Limit significant records in input order. An empty
// result means nothing was significant and is not an error.
func Rank(impacts []model.ImpactRecord, opts RankOptions) []model.ImpactRecord {
	out := make([]model.ImpactRecord, 0, min(max(opts.Limit, 0), len(impacts)))
	if opts.Limit <= 0 {
		return out
	}
	for _, r := range impacts {
		if !opts.Significant(r) {
			continue
		}
		out = append(out, r)
		if len(out) == opts.Limit {
			break
		}
	}
	return out
}
