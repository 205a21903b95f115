package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PricePoint is one trading day of the price history. The backend emits
// "Price"/"Date" keys, which the case-insensitive decoder matches.
type PricePoint struct {
	Date  Date            `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// ChangePoint is a detected structural break in the price series.
type ChangePoint struct {
	Date      Date            `json:"date"`
	PriceAtCP decimal.Decimal `json:"price_at_cp"`
}

func (c *ChangePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date            Date            `json:"date"`
		ChangePointDate Date            `json:"change_point_date"`
		PriceAtCP       decimal.Decimal `json:"price_at_cp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Date = raw.Date
	if c.Date.IsZero() {
		c.Date = raw.ChangePointDate
	}
	c.PriceAtCP = raw.PriceAtCP
	return nil
}

// Event is a geopolitical event with its precomputed match against the
// nearest change point. DaysDifference is consumed as-is.
type Event struct {
	EventDate      Date   `json:"event_date"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	MatchStatus    string `json:"match_status"`
	DaysDifference int    `json:"days_difference"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		EventDate      Date   `json:"event_date"`
		Title          string `json:"title"`
		EventTitle     string `json:"event_title"`
		Category       string `json:"category"`
		EventCategory  string `json:"event_category"`
		MatchStatus    string `json:"match_status"`
		DaysDifference int    `json:"days_difference"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Event{
		EventDate:      raw.EventDate,
		Title:          firstNonEmpty(raw.Title, raw.EventTitle),
		Category:       firstNonEmpty(raw.Category, raw.EventCategory),
		MatchStatus:    raw.MatchStatus,
		DaysDifference: raw.DaysDifference,
	}
	return nil
}

// ImpactRecord compares market behaviour before and after one change point.
// FromPrice and ToPrice are invalid at series boundaries.
type ImpactRecord struct {
	ChangePointDate     Date                `json:"change_point_date"`
	PriceChangePct      decimal.Decimal     `json:"price_change_pct"`
	VolatilityChangePct decimal.Decimal     `json:"volatility_change_pct"`
	FromPrice           decimal.NullDecimal `json:"from_price"`
	ToPrice             decimal.NullDecimal `json:"to_price"`
}

// PlotEvent is an Event placed on the chart axes. Y is invalid when no price
// was observed on the event date.
type PlotEvent struct {
	Event
	X int64               `json:"x"`
	Y decimal.NullDecimal `json:"y"`
}

// UnmarshalJSON decodes the event fields and the axes. Without it the
// promoted Event decoder would drop X and Y.
func (p *PlotEvent) UnmarshalJSON(data []byte) error {
	var ev Event
	if err := ev.UnmarshalJSON(data); err != nil {
		return err
	}
	var axes struct {
		X int64               `json:"x"`
		Y decimal.NullDecimal `json:"y"`
	}
	if err := json.Unmarshal(data, &axes); err != nil {
		return err
	}
	*p = PlotEvent{Event: ev, X: axes.X, Y: axes.Y}
	return nil
}

// EventMarker is a PlotEvent with its classified tier.
type EventMarker struct {
	PlotEvent
	Tier Tier `json:"tier"`
}

func (m *EventMarker) UnmarshalJSON(data []byte) error {
	var pe PlotEvent
	if err := pe.UnmarshalJSON(data); err != nil {
		return err
	}
	var aux struct {
		Tier Tier `json:"tier"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = EventMarker{PlotEvent: pe, Tier: aux.Tier}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
