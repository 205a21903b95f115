// Package overlay prepares the price line, change-point markers and event
// markers for rendering on a shared time axis.
package overlay

import (
	"github.com/shopspring/decimal"

	"BrentLens/internal/model"
)

// Align places each event on the chart axes. Y is the price observed on the
// exact event date and is left invalid when there is none; the event is kept
// so list views can still show it. Output order follows events.
func Align(events []model.Event, prices []model.PricePoint) []model.PlotEvent {
	byDate := make(map[model.Date]decimal.Decimal, len(prices))
	for _, p := range prices {
		if _, dup := byDate[p.Date]; dup {
			continue // first point wins
		}
		byDate[p.Date] = p.Price
	}

	out := make([]model.PlotEvent, len(events))
	for i, ev := range events {
		pe := model.PlotEvent{Event: ev, X: ev.EventDate.UnixMilli()}
		if price, ok := byDate[ev.EventDate]; ok {
			pe.Y = decimal.NewNullDecimal(price)
		}
		out[i] = pe
	}
	return out
}
