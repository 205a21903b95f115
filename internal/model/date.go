package model

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used on the wire.
const DateFormat = "2006-01-02"

// readLayouts are tried in order when decoding a date. The backend serializes
// datetimes as RFC 1123 ("Mon, 02 Jan 2006 15:04:05 GMT").
var readLayouts = []string{
	DateFormat,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
}

// Date is a calendar day with no time of day. Dates are comparable with ==.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date.
func NewDate(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// ParseDate accepts ISO dates, RFC 3339 and RFC 1123 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// UnixMilli is the numeric axis coordinate of the day.
func (d Date) UnixMilli() int64 { return d.Time().UnixMilli() }

// Add returns the date n days later.
func (d Date) Add(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// IsZero reports whether d is the zero Date, which marks a missing value.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is earlier than x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether d is later than x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(x Date) int { return d.Time().Compare(x.Time()) }

// String formats d as 2006-01-02, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateFormat)
}

// MarshalJSON writes the ISO date, or null for the zero Date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or any layout ParseDate understands.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
