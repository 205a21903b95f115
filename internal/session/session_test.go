package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/table"
)

func TestStore_EmptyBeforeLoad(t *testing.T) {
	st := NewStore(collector.NewLoader(collector.NewDemoFetcher(), "demo"))
	_, err := st.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = st.RequestSort(table.KeyTitle)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_RefreshBuildsOverlay(t *testing.T) {
	var calls int
	hook := func(s *collector.Series, err error, _ time.Duration) {
		calls++
		assert.NoError(t, err)
		assert.NotNil(t, s)
	}
	st := NewStore(collector.NewLoader(collector.NewDemoFetcher(), "demo"), hook)

	s, err := st.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, s.Overlay.PriceLine, 180)
	assert.Len(t, s.Overlay.Events, 2)
	assert.Len(t, s.Overlay.Plottable(), 1)
	assert.Equal(t, 1, s.Overlay.StrongCount())
	assert.Equal(t, table.NewCursor(), s.Cursor)
	assert.Len(t, s.TopImpacts(impact.DefaultRankOptions()), 1)

	cur, err := st.Current()
	require.NoError(t, err)
	assert.Same(t, s, cur)
}

func TestStore_FailedRefreshKeepsPreviousSession(t *testing.T) {
	m := collector.NewDemoFetcher()
	st := NewStore(collector.NewLoader(m, "http://127.0.0.1:5000"))

	first, err := st.Refresh(context.Background())
	require.NoError(t, err)

	m.ErrImpacts = errors.New("connection refused")
	_, err = st.Refresh(context.Background())
	var le *collector.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "impact_analysis", le.Endpoint)
	assert.NotNil(t, st.LastError())

	cur, err := st.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestStore_FailedFirstLoadReportsCause(t *testing.T) {
	m := collector.NewDemoFetcher()
	m.ErrPrices = errors.New("connection refused")
	st := NewStore(collector.NewLoader(m, "http://127.0.0.1:5000"))

	_, err := st.Refresh(context.Background())
	require.Error(t, err)

	_, err = st.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	var le *collector.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "price_data", le.Endpoint)
}

func TestStore_RequestSortSwapsCursorOnly(t *testing.T) {
	st := NewStore(collector.NewLoader(collector.NewDemoFetcher(), "demo"))
	loaded, err := st.Refresh(context.Background())
	require.NoError(t, err)

	s, err := st.RequestSort(table.KeyTitle)
	require.NoError(t, err)
	assert.Equal(t, table.Cursor{Key: table.KeyTitle, Direction: table.Ascending}, s.Cursor)
	assert.Same(t, loaded.Series, s.Series)
	assert.Same(t, loaded.Overlay, s.Overlay)
	assert.Equal(t, table.NewCursor(), loaded.Cursor, "previous snapshot is untouched")

	s, err = st.RequestSort(table.KeyTitle)
	require.NoError(t, err)
	assert.Equal(t, table.Descending, s.Cursor.Direction)

	titles := []string{}
	for _, e := range s.SortedEvents() {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Demo supply shock", "Demo summit"}, titles)
}
