package overlay

import (
	"slices"

	"BrentLens/internal/model"
)

// Model is the render-ready overlay: the price line plus the change-point
// and event marker layers. Its slices are private copies of the inputs.
type Model struct {
	PriceLine    []model.PricePoint  `json:"price_line"`
	ChangePoints []model.ChangePoint `json:"change_points"`
	Events       []model.EventMarker `json:"events"`
}

// Compose assembles already-derived layers into one Model. It does no
// filtering or classification.
func Compose(prices []model.PricePoint, changePoints []model.ChangePoint, markers []model.EventMarker) *Model {
	return &Model{
		PriceLine:    clone(prices),
		ChangePoints: clone(changePoints),
		Events:       clone(markers),
	}
}

// Build runs Align, Mark and Compose over raw session series.
func Build(prices []model.PricePoint, changePoints []model.ChangePoint, events []model.Event) *Model {
	return Compose(prices, changePoints, Mark(Align(events, prices)))
}

// Plottable returns the event markers that have a price to sit on.
func (m *Model) Plottable() []model.EventMarker {
	out := make([]model.EventMarker, 0, len(m.Events))
	for _, ev := range m.Events {
		if ev.Y.Valid {
			out = append(out, ev)
		}
	}
	return out
}

// ByTier groups plottable markers by tier.
func (m *Model) ByTier() map[model.Tier][]model.EventMarker {
	groups := make(map[model.Tier][]model.EventMarker)
	for _, ev := range m.Plottable() {
		groups[ev.Tier] = append(groups[ev.Tier], ev)
	}
	return groups
}

// StrongCount is the number of events with a strong match.
func (m *Model) StrongCount() int {
	n := 0
	for _, ev := range m.Events {
		if ev.Tier == model.TierStrong {
			n++
		}
	}
	return n
}

func clone[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
