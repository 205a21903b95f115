package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

func pts(vals ...float64) []model.PricePoint {
	start := model.MustParseDate("2020-01-01")
	out := make([]model.PricePoint, len(vals))
	for i, v := range vals {
		out[i] = model.PricePoint{Date: start.Add(i), Price: decimal.NewFromFloat(v)}
	}
	return out
}

func TestCalculateRange(t *testing.T) {
	r, err := CalculateRange(pts(50, 70, 40, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.High.Equal(decimal.NewFromInt(70)) || !r.Low.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 70/40, got %s/%s", r.High, r.Low)
	}
	if r.First.Date.String() != "2020-01-01" || r.Last.Date.String() != "2020-01-04" {
		t.Errorf("unexpected end points %s..%s", r.First.Date, r.Last.Date)
	}
	pct, err := r.ChangePct()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pct.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected +20%%, got %s", pct)
	}
}

func TestCalculateRange_Empty(t *testing.T) {
	if _, err := CalculateRange(nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestPaddedBounds(t *testing.T) {
	tests := []struct {
		vals   []float64
		lo, hi float64
	}{
		{[]float64{40, 60}, 38, 62},
		{[]float64{10, 10}, 9.9, 10.1},
		{[]float64{0.5, 100.5}, 0, 110.5},
	}
	for _, tt := range tests {
		r, _ := CalculateRange(pts(tt.vals...))
		lo, hi := PaddedBounds(r, 0.1)
		if diff(lo, tt.lo) > 1e-9 || diff(hi, tt.hi) > 1e-9 {
			t.Errorf("%v: expected [%.2f, %.2f], got [%.2f, %.2f]", tt.vals, tt.lo, tt.hi, lo, hi)
		}
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
