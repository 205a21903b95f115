// Package table keeps the event table's sort cursor and produces sorted
// copies of the event list.
package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"BrentLens/internal/model"
)

// ErrUnknownSortKey is returned by ParseSortKey for unsupported columns.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey names an event column.
type SortKey string

const (
	KeyEventDate      SortKey = "event_date"
	KeyTitle          SortKey = "title"
	KeyCategory       SortKey = "category"
	KeyMatchStatus    SortKey = "match_status"
	KeyDaysDifference SortKey = "days_difference"
)

// Keys lists the sortable columns in table order.
var Keys = []SortKey{KeyEventDate, KeyTitle, KeyCategory, KeyMatchStatus, KeyDaysDifference}

var aliases = map[string]SortKey{
	"date":   KeyEventDate,
	"event":  KeyTitle,
	"status": KeyMatchStatus,
	"days":   KeyDaysDifference,
}

// ParseSortKey accepts a column name or one of its short aliases.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := aliases[s]; ok {
		return k, nil
	}
	if slices.Contains(Keys, SortKey(s)) {
		return SortKey(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Direction is the sort order of the cursor.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func (d Direction) toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Cursor is the table's sort state. It is a value; RequestSort returns the
// next state instead of mutating.
type Cursor struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// NewCursor returns the initial state: newest events first.
func NewCursor() Cursor {
	return Cursor{Key: KeyEventDate, Direction: Descending}
}

// RequestSort toggles the direction when key is already selected; otherwise
// it selects key in ascending order.
func (c Cursor) RequestSort(key SortKey) Cursor {
	if key == c.Key {
		return Cursor{Key: key, Direction: c.Direction.toggle()}
	}
	return Cursor{Key: key, Direction: Ascending}
}

// SortedView returns a stable-sorted copy of events. Descending inverts the
// comparison, so equal rows keep their input order in both directions.
func (c Cursor) SortedView(events []model.Event) []model.Event {
	out := slices.Clone(events)
	if out == nil {
		out = []model.Event{}
	}
	compare := comparator(c.Key)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		if c.Direction == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func comparator(key SortKey) func(a, b model.Event) int {
	switch key {
	case KeyEventDate:
		return func(a, b model.Event) int { return a.EventDate.Compare(b.EventDate) }
	case KeyTitle:
		return func(a, b model.Event) int { return strings.Compare(a.Title, b.Title) }
	case KeyCategory:
		return func(a, b model.Event) int { return strings.Compare(a.Category, b.Category) }
	case KeyMatchStatus:
		return func(a, b model.Event) int { return strings.Compare(a.MatchStatus, b.MatchStatus) }
	case KeyDaysDifference:
		return func(a, b model.Event) int { return cmp.Compare(a.DaysDifference, b.DaysDifference) }
	default:
		return func(model.Event, model.Event) int { return 0 }
	}
}
