package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

var (
	// ErrNotFound is returned when no dashboard or series is available.
	ErrNotFound = errors.New("no data available")
)

// MemoryStore is a concurrency-safe in-memory dashboard history and series
// store. It implements both stats.Store and stats.Sink.
type MemoryStore struct {
	mu sync.RWMutex

	// time-ordered dashboards, oldest first
	dashboards []stats.Dashboard
	// key: country code or aggregate key
	series map[string]*stats.CountrySeries

	// retention configuration
	maxHistory int           // max number of dashboards kept
	maxAge     time.Duration // optional max age for dashboards

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		series:     make(map[string]*stats.CountrySeries),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveDashboard appends a dashboard and enforces retention.
func (s *MemoryStore) SaveDashboard(d stats.Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dashboards = append(s.dashboards, d)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.dashboards) > s.maxHistory {
		over := len(s.dashboards) - s.maxHistory
		s.dashboards = s.dashboards[over:]
	}

	// Enforce retention by age; the newest dashboard is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.dashboards)-1; i++ {
			if !s.dashboards[i].LastUpdated.Before(cutoff) {
				break
			}
		}
		s.dashboards = s.dashboards[i:]
	}
}

// GetLatest returns the most recent dashboard.
func (s *MemoryStore) GetLatest() (stats.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.dashboards) == 0 {
		return stats.Dashboard{}, ErrNotFound
	}
	return s.dashboards[len(s.dashboards)-1], nil
}

// GetRange returns all dashboards computed between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]stats.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []stats.Dashboard
	for _, d := range s.dashboards {
		if !d.LastUpdated.Before(from) && !d.LastUpdated.After(to) {
			result = append(result, d)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Write stores the latest series for key.
func (s *MemoryStore) Write(ctx context.Context, key string, series *stats.CountrySeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[key] = series
	return nil
}

// GetSeries returns the latest series written for key.
func (s *MemoryStore) GetSeries(key string) (*stats.CountrySeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[key]
	if !ok {
		return nil, ErrNotFound
	}
	return series, nil
}
