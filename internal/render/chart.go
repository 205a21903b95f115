// Package render draws the overlay model as a PNG chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"BrentLens/internal/calculator"
	"BrentLens/internal/model"
	"BrentLens/internal/overlay"
)

// ErrNotEnoughData is returned when the price line cannot span an axis.
var ErrNotEnoughData = errors.New("need at least two price points to draw a chart")

// ChartOptions sizes and labels the chart.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

// tierOrder is the legend and paint order; strong markers are drawn last.
var tierOrder = []model.Tier{model.TierNone, model.TierWeak, model.TierStrong}

var tierNames = map[model.Tier]string{
	model.TierStrong: "Strong Event Match",
	model.TierWeak:   "Weak Event Match",
	model.TierNone:   "No Match",
}

// dotStyle renders points only (no connecting line).
func dotStyle(hex string, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    drawing.ColorFromHex(hex),
	}
}

// Chart writes the overlay as a PNG: the price line, change points as red
// dots, and events colored by tier. Events without a price are left out.
func Chart(w io.Writer, m *overlay.Model, opts ChartOptions) error {
	if len(m.PriceLine) < 2 {
		return ErrNotEnoughData
	}
	rng, err := calculator.CalculateRange(m.PriceLine)
	if err != nil {
		return err
	}
	lo, hi := calculator.PaddedBounds(rng, 0.05)

	series := []chart.Series{priceSeries(m.PriceLine)}
	if len(m.ChangePoints) > 0 {
		series = append(series, changePointSeries(m.ChangePoints))
	}
	groups := m.ByTier()
	for _, tier := range tierOrder {
		if evs := groups[tier]; len(evs) > 0 {
			series = append(series, eventSeries(tierNames[tier], tier, evs))
		}
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price ($)",
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: dollarFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func priceSeries(prices []model.PricePoint) chart.TimeSeries {
	xs := make([]time.Time, len(prices))
	ys := make([]float64, len(prices))
	for i, p := range prices {
		xs[i] = p.Date.Time()
		ys[i] = p.Price.InexactFloat64()
	}
	return chart.TimeSeries{
		Name: "Price",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex(model.PriceLineColor),
			StrokeWidth: 2,
		},
		XValues: xs,
		YValues: ys,
	}
}

func changePointSeries(cps []model.ChangePoint) chart.TimeSeries {
	xs := make([]time.Time, len(cps))
	ys := make([]float64, len(cps))
	for i, cp := range cps {
		xs[i] = cp.Date.Time()
		ys[i] = cp.PriceAtCP.InexactFloat64()
	}
	return chart.TimeSeries{
		Name:    "Change Points",
		Style:   dotStyle(model.ChangePointColor, 6),
		XValues: xs,
		YValues: ys,
	}
}

func eventSeries(name string, tier model.Tier, evs []model.EventMarker) chart.TimeSeries {
	xs := make([]time.Time, len(evs))
	ys := make([]float64, len(evs))
	for i, ev := range evs {
		xs[i] = time.UnixMilli(ev.X).UTC()
		ys[i] = ev.Y.Decimal.InexactFloat64()
	}
	return chart.TimeSeries{
		Name:    name,
		Style:   dotStyle(tier.Color(), 8),
		XValues: xs,
		YValues: ys,
	}
}

func dollarFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}
