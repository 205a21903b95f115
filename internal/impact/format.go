package impact

import (
	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

// Unknown is shown in place of a price the backend could not compute.
const Unknown = "unknown"

// FormatPrice renders a dollar price, or Unknown when absent.
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return Unknown
	}
	return "$" + p.Decimal.StringFixed(2)
}

// FormatPct renders a signed percentage with one decimal, e.g. "+6.0%".
// The sign follows the unrounded value, so -0.04 is "-0.0%".
func FormatPct(p decimal.Decimal) string {
	s := p.Abs().StringFixed(1) + "%"
	if p.IsNegative() {
		return "-" + s
	}
	return "+" + s
}

// Direction is "positive" for non-negative changes and "negative" otherwise.
func Direction(p decimal.Decimal) string {
	if p.IsNegative() {
		return "negative"
	}
	return "positive"
}

// Card is the display form of one ranked impact record.
type Card struct {
	ChangePointDate     string `json:"change_point_date"`
	PriceChange         string `json:"price_change"`
	PriceDirection      string `json:"price_direction"`
	VolatilityChange    string `json:"volatility_change"`
	VolatilityDirection string `json:"volatility_direction"`
	PriceBefore         string `json:"price_before"`
	PriceAfter          string `json:"price_after"`
}

// NewCard formats a record for display.
func NewCard(r model.ImpactRecord) Card {
	return Card{
		ChangePointDate:     r.ChangePointDate.String(),
		PriceChange:         FormatPct(r.PriceChangePct),
		PriceDirection:      Direction(r.PriceChangePct),
		VolatilityChange:    FormatPct(r.VolatilityChangePct),
		VolatilityDirection: Direction(r.VolatilityChangePct),
		PriceBefore:         FormatPrice(r.FromPrice),
		PriceAfter:          FormatPrice(r.ToPrice),
	}
}

// Cards formats each record in order.
func Cards(records []model.ImpactRecord) []Card {
	out := make([]Card, len(records))
	for i, r := range records {
		out[i] = NewCard(r)
	}
	return out
}
