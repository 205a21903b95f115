package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

// PriceRange summarizes a price series.
type PriceRange struct {
	High, Low   decimal.Decimal
	First, Last model.PricePoint
}

// CalculateRange scans the whole series and returns its high, low and end points.
func CalculateRange(prices []model.PricePoint) (PriceRange, error) {
	if len(prices) == 0 {
		return PriceRange{}, errors.New("no prices provided")
	}
	r := PriceRange{
		High:  prices[0].Price,
		Low:   prices[0].Price,
		First: prices[0],
		Last:  prices[len(prices)-1],
	}
	for _, p := range prices[1:] {
		if p.Price.GreaterThan(r.High) {
			r.High = p.Price
		}
		if p.Price.LessThan(r.Low) {
			r.Low = p.Price
		}
	}
	return r, nil
}

// PaddedBounds widens [low, high] by pct of the span on each side so markers
// at the extremes stay inside the plot. A flat series gets a span of 1.
func PaddedBounds(r PriceRange, pct float64) (lo, hi float64) {
	lo, hi = r.Low.InexactFloat64(), r.High.InexactFloat64()
	span := hi - lo
	if span == 0 {
		span = 1
	}
	pad := span * pct
	lo -= pad
	if lo < 0 && r.Low.Sign() >= 0 {
		lo = 0
	}
	return lo, hi + pad
}

// ChangePct is the percentage move from the first to the last point.
func (r PriceRange) ChangePct() (decimal.Decimal, error) {
	if r.First.Price.IsZero() {
		return decimal.Zero, errors.New("first price is zero")
	}
	return r.Last.Price.Sub(r.First.Price).Div(r.First.Price).Mul(decimal.NewFromInt(100)), nil
}
