// Package session holds the data loaded for one dashboard session and
// replaces it wholesale on refresh.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/model"
	"BrentLens/internal/overlay"
	"BrentLens/internal/table"
)

// ErrNoSession is returned when nothing has been loaded yet.
var ErrNoSession = errors.New("no session loaded")

// Session is an immutable snapshot of one load plus the table's sort cursor.
// Every change produces a new Session.
type Session struct {
	Series   *collector.Series
	Overlay  *overlay.Model
	Cursor   table.Cursor
	LoadedAt time.Time
}

// New derives a session from freshly loaded series.
func New(s *collector.Series) *Session {
	return &Session{
		Series:   s,
		Overlay:  overlay.Build(s.Prices, s.ChangePoints, s.Events),
		Cursor:   table.NewCursor(),
		LoadedAt: s.FetchedAt,
	}
}

// SortedEvents is the event table under the session's cursor.
func (s *Session) SortedEvents() []model.Event {
	return s.Cursor.SortedView(s.Series.Events)
}

// TopImpacts ranks the session's impact records.
func (s *Session) TopImpacts(opts impact.RankOptions) []model.ImpactRecord {
	return impact.Rank(s.Series.Impacts, opts)
}

// withCursor returns a copy sharing the loaded data.
func (s *Session) withCursor(c table.Cursor) *Session {
	cp := *s
	cp.Cursor = c
	return &cp
}

// LoadHook observes every load attempt, successful or not.
type LoadHook func(series *collector.Series, err error, took time.Duration)

// Store keeps the current session. Readers never block; a refresh swaps in
// a complete session or leaves the previous one in place.
type Store struct {
	loader  *collector.Loader
	current atomic.Pointer[Session]
	lastErr atomic.Pointer[collector.LoadError]
	hooks   []LoadHook
	mu      sync.Mutex // serializes refreshes
}

// NewStore creates an empty store.
func NewStore(loader *collector.Loader, hooks ...LoadHook) *Store {
	return &Store{loader: loader, hooks: hooks}
}

// Current returns the loaded session, or ErrNoSession together with the
// last load failure if there is none.
func (st *Store) Current() (*Session, error) {
	if s := st.current.Load(); s != nil {
		return s, nil
	}
	if le := st.lastErr.Load(); le != nil {
		return nil, errors.Join(ErrNoSession, le)
	}
	return nil, ErrNoSession
}

// LastError returns the most recent load failure, if the latest attempt failed.
func (st *Store) LastError() *collector.LoadError {
	return st.lastErr.Load()
}

// Refresh loads a fresh session. On failure the previous session stays.
func (st *Store) Refresh(ctx context.Context) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	start := time.Now()
	series, err := st.loader.Load(ctx)
	for _, h := range st.hooks {
		h(series, err, time.Since(start))
	}
	if err != nil {
		var le *collector.LoadError
		if !errors.As(err, &le) {
			le = &collector.LoadError{Source: st.loader.Source, Endpoint: "all", Err: err}
		}
		st.lastErr.Store(le)
		return nil, le
	}

	s := New(series)
	st.current.Store(s)
	st.lastErr.Store(nil)
	log.Printf("[INFO] session refreshed: %d change points, %d strong matches",
		len(s.Overlay.ChangePoints), s.Overlay.StrongCount())
	return s, nil
}

// RequestSort applies a column click to the current session's cursor.
func (st *Store) RequestSort(key table.SortKey) (*Session, error) {
	for {
		old := st.current.Load()
		if old == nil {
			return nil, ErrNoSession
		}
		next := old.withCursor(old.Cursor.RequestSort(key))
		if st.current.CompareAndSwap(old, next) {
			return next, nil
		}
	}
}
