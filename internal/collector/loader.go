package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"BrentLens/internal/model"
)

// Series is the full set of backend outputs for one session.
type Series struct {
	Prices       []model.PricePoint
	ChangePoints []model.ChangePoint
	Events       []model.Event
	Impacts      []model.ImpactRecord
	FetchedAt    time.Time
}

// LoadError is the single session-level failure of a load. Endpoint names the
// first series that failed.
type LoadError struct {
	Source   string
	Endpoint string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Endpoint, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UserMessage is the text shown in place of the dashboard.
func (e *LoadError) UserMessage() string {
	return fmt.Sprintf("Failed to fetch data from server (%s). Make sure the backend is running at %s", e.Endpoint, e.Source)
}

// Loader fetches all four series concurrently and joins them.
type Loader struct {
	Fetcher Fetcher
	Source  string
}

// NewLoader creates a new Loader. source is used in error messages.
func NewLoader(fetcher Fetcher, source string) *Loader {
	return &Loader{Fetcher: fetcher, Source: source}
}

// Load fires the four fetches in parallel. The first failure cancels the
// rest and is returned as a *LoadError; no partial Series is ever returned.
func (l *Loader) Load(ctx context.Context) (*Series, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	s := &Series{}

	g.Go(func() (err error) {
		s.Prices, err = l.Fetcher.FetchPrices(gctx)
		return l.wrap("price_data", err)
	})
	g.Go(func() (err error) {
		s.ChangePoints, err = l.Fetcher.FetchChangePoints(gctx)
		return l.wrap("change_points", err)
	})
	g.Go(func() (err error) {
		s.Events, err = l.Fetcher.FetchEvents(gctx)
		return l.wrap("events", err)
	})
	g.Go(func() (err error) {
		s.Impacts, err = l.Fetcher.FetchImpacts(gctx)
		return l.wrap("impact_analysis", err)
	})

	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] load from %s failed after %v: %v", l.Fetcher.Name(), time.Since(start), err)
		return nil, err
	}
	s.FetchedAt = time.Now()
	log.Printf("[INFO] loaded %d prices, %d change points, %d events, %d impacts in %v",
		len(s.Prices), len(s.ChangePoints), len(s.Events), len(s.Impacts), time.Since(start))
	return s, nil
}

func (l *Loader) wrap(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Source: l.Source, Endpoint: endpoint, Err: err}
}
