package overlay

import (
	"strings"

	"BrentLens/internal/model"
)

// Markers embedded in the backend's match labels, e.g. "✅ STRONG MATCH".
const (
	strongMarker = "STRONG"
	weakMarker   = "WEAK"
)

// Classify maps a match-status label to its tier. Labels carrying neither
// marker, including unknown ones, fall to TierNone.
func Classify(status string) model.Tier {
	switch {
	case strings.Contains(status, strongMarker):
		return model.TierStrong
	case strings.Contains(status, weakMarker):
		return model.TierWeak
	default:
		return model.TierNone
	}
}

// Mark classifies every aligned event once so downstream code reads the tier
// instead of re-parsing labels.
func Mark(events []model.PlotEvent) []model.EventMarker {
	out := make([]model.EventMarker, len(events))
	for i, pe := range events {
		out[i] = model.EventMarker{PlotEvent: pe, Tier: Classify(pe.MatchStatus)}
	}
	return out
}
