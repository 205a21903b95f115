package recorder

import "time"

// LoadEvent records one session load attempt. It holds counts only; series
// data is never written.
type LoadEvent struct {
	At           time.Time
	Source       string
	Success      bool
	Duration     time.Duration
	Prices       int
	ChangePoints int
	Events       int
	StrongEvents int
	Impacts      int
	Significant  int
	Error        string
}

// DeliveryEvent records a digest or command reply pushed to a channel.
type DeliveryEvent struct {
	At      time.Time
	Channel string // "telegram"
	Kind    string // "DIGEST", "COMMAND"
	Command string
	Success bool
	Error   string
}

// Recorder keeps an append-only audit trail of sessions and deliveries.
type Recorder interface {
	RecordLoad(evt *LoadEvent) error
	RecordDelivery(evt *DeliveryEvent) error
	RecentLoads(limit int) ([]LoadEvent, error)
	Close() error
}
