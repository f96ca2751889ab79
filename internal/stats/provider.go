package stats

import (
	"context"
	"time"
)

// Provider abstracts the upstream source of raw daily records.
// Records come back unordered; at most one per (date, country) pair.
type Provider interface {
	Name() string
	FetchAll(ctx context.Context) ([]DailyStatRecord, error)
}

// Sink persists one series blob per key. Keys are country codes or AggregateKey.
type Sink interface {
	Write(ctx context.Context, key string, series *CountrySeries) error
}

// Store is the read side the service keeps dashboards and series in.
type Store interface {
	SaveDashboard(d Dashboard)
	GetLatest() (Dashboard, error)
	GetRange(from, to time.Time) ([]Dashboard, error)
	GetSeries(key string) (*CountrySeries, error)
}
