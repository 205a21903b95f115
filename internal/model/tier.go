package model

import (
	"encoding/json"
	"fmt"
)

// Tier is the visual significance of an event's match against a change point.
type Tier int

const (
	TierNone Tier = iota
	TierWeak
	TierStrong
)

// Marker colors used by every renderer.
const (
	ChangePointColor = "ff0000"
	PriceLineColor   = "3366cc"
)

func (t Tier) String() string {
	switch t {
	case TierStrong:
		return "strong"
	case TierWeak:
		return "weak"
	default:
		return "none"
	}
}

// Glyph is the display symbol for the tier.
func (t Tier) Glyph() string {
	switch t {
	case TierStrong:
		return "✅"
	case TierWeak:
		return "⚠️"
	default:
		return "❌"
	}
}

// Color is the marker fill as a hex string without '#'.
func (t Tier) Color() string {
	switch t {
	case TierStrong:
		return "ff0000"
	case TierWeak:
		return "ff9966"
	default:
		return "cccccc"
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads the names written by MarshalJSON.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tier must be a string: %w", err)
	}
	switch s {
	case "strong":
		*t = TierStrong
	case "weak":
		*t = TierWeak
	case "none", "":
		*t = TierNone
	default:
		return fmt.Errorf("unknown tier %q", s)
	}
	return nil
}
