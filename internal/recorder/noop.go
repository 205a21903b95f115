package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLoad(_ *LoadEvent) error         { return nil }
func (n *NoopRecorder) RecordDelivery(_ *DeliveryEvent) error { return nil }
func (n *NoopRecorder) RecentLoads(_ int) ([]LoadEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                          { return nil }
