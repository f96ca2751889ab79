package store

import (
	"context"
	"errors"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

// Fanout writes every series to each of its sinks in order. All sinks are
// attempted; their errors are joined.
type Fanout []stats.Sink

// Write implements stats.Sink.
func (f Fanout) Write(ctx context.Context, key string, series *stats.CountrySeries) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Write(ctx, key, series); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
