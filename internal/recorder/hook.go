package recorder

import (
	"log"
	"time"

	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/overlay"
	"BrentLens/internal/session"
)

// LoadHook returns a session hook that writes each load attempt to rec.
func LoadHook(rec Recorder, source string, opts impact.RankOptions) session.LoadHook {
	return func(s *collector.Series, err error, took time.Duration) {
		evt := &LoadEvent{At: time.Now(), Source: source, Duration: took}
		if err != nil {
			evt.Error = err.Error()
		} else {
			evt.Success = true
			evt.Prices = len(s.Prices)
			evt.ChangePoints = len(s.ChangePoints)
			evt.Events = len(s.Events)
			evt.Impacts = len(s.Impacts)
			evt.StrongEvents = overlay.Build(nil, nil, s.Events).StrongCount()
			evt.Significant = len(impact.Rank(s.Impacts, impact.RankOptions{
				PriceThresholdPct:      opts.PriceThresholdPct,
				VolatilityThresholdPct: opts.VolatilityThresholdPct,
				Limit:                  len(s.Impacts),
			}))
		}
		if err := rec.RecordLoad(evt); err != nil {
			log.Printf("[ERROR] record load: %v", err)
		}
	}
}
