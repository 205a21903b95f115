package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// A non-nil Err* field makes the matching call fail.
type MockFetcher struct {
	Prices       []model.PricePoint
	ChangePoints []model.ChangePoint
	Events       []model.Event
	Impacts      []model.ImpactRecord

	ErrPrices       error
	ErrChangePoints error
	ErrEvents       error
	ErrImpacts      error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrices(context.Context) ([]model.PricePoint, error) {
	return m.Prices, m.ErrPrices
}

func (m *MockFetcher) FetchChangePoints(context.Context) ([]model.ChangePoint, error) {
	return m.ChangePoints, m.ErrChangePoints
}

func (m *MockFetcher) FetchEvents(context.Context) ([]model.Event, error) {
	return m.Events, m.ErrEvents
}

func (m *MockFetcher) FetchImpacts(context.Context) ([]model.ImpactRecord, error) {
	return m.Impacts, m.ErrImpacts
}

// GenerateMockPrices builds count consecutive daily points ending at end,
// drifting slowly around basePrice.
func GenerateMockPrices(basePrice float64, count int, end model.Date) []model.PricePoint {
	pts := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		pts[i] = model.PricePoint{
			Date:  end.Add(i - (count - 1)),
			Price: decimal.NewFromFloat(p).Round(2),
		}
	}
	return pts
}

// NewDemoFetcher returns a mock seeded with a small, self-consistent data set.
func NewDemoFetcher() *MockFetcher {
	end := model.NewDate(2022, time.June, 30)
	prices := GenerateMockPrices(100, 180, end)
	cp := prices[60]
	ev := prices[62]
	return &MockFetcher{
		Prices:       prices,
		ChangePoints: []model.ChangePoint{{Date: cp.Date, PriceAtCP: cp.Price}},
		Events: []model.Event{
			{EventDate: ev.Date, Title: "Demo supply shock", Category: "Supply", MatchStatus: "✅ STRONG MATCH", DaysDifference: 2},
			{EventDate: end.Add(3), Title: "Demo summit", Category: "Policy", MatchStatus: "❌ NO MATCH", DaysDifference: 121},
		},
		Impacts: []model.ImpactRecord{{
			ChangePointDate:     cp.Date,
			PriceChangePct:      decimal.NewFromFloat(6.2),
			VolatilityChangePct: decimal.NewFromFloat(14),
			FromPrice:           decimal.NewNullDecimal(prices[59].Price),
			ToPrice:             decimal.NewNullDecimal(prices[61].Price),
		}},
	}
}
