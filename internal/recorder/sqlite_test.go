package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_LoadsNewestFirst(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer r.Close()

	base := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordLoad(&LoadEvent{
		At: base, Source: "http://127.0.0.1:5000", Success: true, Duration: 1500 * time.Millisecond,
		Prices: 9000, ChangePoints: 12, Events: 15, StrongEvents: 6, Impacts: 12, Significant: 5,
	}))
	require.NoError(t, r.RecordLoad(&LoadEvent{
		At: base.Add(24 * time.Hour), Source: "http://127.0.0.1:5000", Error: "load events: connection refused",
	}))

	loads, err := r.RecentLoads(10)
	require.NoError(t, err)
	require.Len(t, loads, 2)

	assert.False(t, loads[0].Success)
	assert.Equal(t, "load events: connection refused", loads[0].Error)

	assert.True(t, loads[1].Success)
	assert.Equal(t, 9000, loads[1].Prices)
	assert.Equal(t, 6, loads[1].StrongEvents)
	assert.Equal(t, 1500*time.Millisecond, loads[1].Duration)
	assert.True(t, loads[1].At.Equal(base))

	limited, err := r.RecentLoads(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteRecorder_Delivery(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer r.Close()

	assert.NoError(t, r.RecordDelivery(&DeliveryEvent{Channel: "telegram", Kind: "COMMAND", Command: "/impacts", Success: true}))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordLoad(&LoadEvent{}))
	loads, err := r.RecentLoads(5)
	assert.NoError(t, err)
	assert.Empty(t, loads)
	assert.NoError(t, r.Close())
}
