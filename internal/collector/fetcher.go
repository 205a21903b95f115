package collector

import (
	"context"

	"BrentLens/internal/model"
)

// Fetcher retrieves the four finished series from the analysis backend.
type Fetcher interface {
	FetchPrices(ctx context.Context) ([]model.PricePoint, error)
	FetchChangePoints(ctx context.Context) ([]model.ChangePoint, error)
	FetchEvents(ctx context.Context) ([]model.Event, error)
	FetchImpacts(ctx context.Context) ([]model.ImpactRecord, error)
	Name() string
}
