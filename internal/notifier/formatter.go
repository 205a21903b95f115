package notifier

import (
	"fmt"
	"html"
	"strings"

	"BrentLens/internal/calculator"
	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/model"
	"BrentLens/internal/overlay"
	"BrentLens/internal/table"
)

// NoImpacts is shown when nothing passes the significance thresholds.
const NoImpacts = "No significant impacts found in the data."

// FormatHeadline is the one-line dashboard summary.
func FormatHeadline(m *overlay.Model) string {
	return fmt.Sprintf("Detected %d structural change points aligned with %d major events",
		len(m.ChangePoints), m.StrongCount())
}

// FormatSummary formats the session overview.
func FormatSummary(title string, m *overlay.Model) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛢 <b>%s</b>\n\n", html.EscapeString(title)))
	b.WriteString(FormatHeadline(m) + "\n")
	if rng, err := calculator.CalculateRange(m.PriceLine); err == nil {
		b.WriteString(fmt.Sprintf("Series: %s → %s (%d points)\n", rng.First.Date, rng.Last.Date, len(m.PriceLine)))
		b.WriteString(fmt.Sprintf("Range: $%s – $%s\n", rng.Low.StringFixed(2), rng.High.StringFixed(2)))
		if pct, err := rng.ChangePct(); err == nil {
			b.WriteString(fmt.Sprintf("Overall: %s\n", impact.FormatPct(pct)))
		}
	}
	plotted := len(m.Plottable())
	if missing := len(m.Events) - plotted; missing > 0 {
		b.WriteString(fmt.Sprintf("%d of %d events have no price on their date\n", missing, len(m.Events)))
	}
	return b.String()
}

// FormatImpacts renders ranked impact records as cards.
func FormatImpacts(records []model.ImpactRecord) string {
	var b strings.Builder
	b.WriteString("📈 <b>Top Market Impacts</b>\n\n")
	if len(records) == 0 {
		b.WriteString(NoImpacts)
		return b.String()
	}
	for _, c := range impact.Cards(records) {
		b.WriteString(fmt.Sprintf("<b>Change on %s</b>\n", c.ChangePointDate))
		b.WriteString(fmt.Sprintf("  Price Change: %s\n", c.PriceChange))
		b.WriteString(fmt.Sprintf("  Volatility Change: %s\n", c.VolatilityChange))
		b.WriteString(fmt.Sprintf("  Price Before: %s | After: %s\n\n", c.PriceBefore, c.PriceAfter))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEventTable renders up to limit rows of an already-sorted event list.
func FormatEventTable(events []model.Event, cursor table.Cursor, limit int) string {
	var b strings.Builder
	arrow := "▲"
	if cursor.Direction == table.Descending {
		arrow = "▼"
	}
	b.WriteString(fmt.Sprintf("🗂 <b>Geopolitical Events & Matches</b> (by %s %s)\n\n", cursor.Key, arrow))
	if len(events) == 0 {
		b.WriteString("No events.")
		return b.String()
	}
	shown := events
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, ev := range shown {
		b.WriteString(fmt.Sprintf("%s | %s | %s | %s | %+dd\n",
			ev.EventDate, html.EscapeString(ev.Title), html.EscapeString(ev.Category),
			html.EscapeString(ev.MatchStatus), ev.DaysDifference))
	}
	if len(shown) < len(events) {
		b.WriteString(fmt.Sprintf("… %d more\n", len(events)-len(shown)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEventLine is the tooltip text for one event marker.
func FormatEventLine(ev model.EventMarker) string {
	price := "no price"
	if ev.Y.Valid {
		price = "$" + ev.Y.Decimal.StringFixed(2)
	}
	return fmt.Sprintf("%s · %s · %s · %s", ev.EventDate, price, ev.Title, ev.MatchStatus)
}

// FormatLegend explains the chart's marker colors.
func FormatLegend() string {
	return fmt.Sprintf("● Change Points (#%s) | %s Strong Event Match (#%s) | %s Weak Event Match (#%s) | %s No Match (#%s)",
		model.ChangePointColor,
		model.TierStrong.Glyph(), model.TierStrong.Color(),
		model.TierWeak.Glyph(), model.TierWeak.Color(),
		model.TierNone.Glyph(), model.TierNone.Color())
}

// FormatLoadError is shown instead of any dashboard content.
func FormatLoadError(le *collector.LoadError) string {
	return fmt.Sprintf("❌ <b>Error Loading Data</b>\n\n%s\n\n%s",
		html.EscapeString(le.Err.Error()), html.EscapeString(le.UserMessage()))
}
