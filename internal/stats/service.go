package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/refdata"
)

const defaultWriteConcurrency = 8

// Options tune a Service. Zero values select defaults.
type Options struct {
	// Location is the time zone reference dates are computed in.
	Location *time.Location
	// WriteConcurrency bounds in-flight sink writes.
	WriteConcurrency int
	// Now is the clock stamped on dashboards.
	Now func() time.Time
}

// Service orchestrates fetching raw records, deriving the snapshot and series,
// persisting series blobs and keeping the resulting dashboard.
type Service struct {
	provider  Provider
	sink      Sink
	store     Store
	countries map[string]refdata.Country
	notices   []refdata.Notice

	loc         *time.Location
	concurrency int
	now         func() time.Time
}

// NewService creates a new Service. Countries and notices are passed through
// to every dashboard; hidden notices are dropped here once.
func NewService(provider Provider, sink Sink, store Store, countries []refdata.Country, notices []refdata.Notice, opts Options) *Service {
	s := &Service{
		provider:    provider,
		sink:        sink,
		store:       store,
		countries:   refdata.KeyByCC(countries),
		notices:     refdata.VisibleNotices(notices),
		loc:         opts.Location,
		concurrency: opts.WriteConcurrency,
		now:         opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultWriteConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Refresh runs one full refresh for the given anchor date. Provider failures
// and a missing reference date abort it; per-key write failures are collected
// in the result and do not.
func (s *Service) Refresh(ctx context.Context, anchor time.Time) (*RefreshResult, error) {
	if s.provider == nil {
		return nil, &ProviderUnavailableError{Provider: "none", Err: errors.New("no provider configured")}
	}

	runID := uuid.NewString()
	logger.Debug("refresh %s: fetching from %s", runID, s.provider.Name())

	records, err := s.provider.FetchAll(ctx)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: s.provider.Name(), Err: err}
	}

	buckets := GroupByDate(records)
	today, yesterday := ReferenceDates(anchor, s.loc)

	snapshot, err := BuildSnapshot(buckets, today, yesterday)
	if err != nil {
		return nil, err
	}

	series := BuildSeries(buckets)
	written, failures := s.writeAll(ctx, series)

	dashboard := Dashboard{
		LastUpdated:   s.now().UTC(),
		RunID:         runID,
		ReferenceDate: today,
		GlobalStats:   snapshot,
		CountryByCC:   s.countries,
		Notice:        s.notices,
	}
	if s.store != nil {
		s.store.SaveDashboard(dashboard)
	}

	logger.Info("refresh %s: %s records over %s dates, %d countries in snapshot for %s, %d series written, %d failed",
		runID, humanize.Comma(int64(len(records))), humanize.Comma(int64(len(buckets))),
		len(snapshot), today, written, len(failures))

	return &RefreshResult{
		Dashboard:     dashboard,
		Series:        series,
		Written:       written,
		WriteFailures: failures,
	}, nil
}

// writeAll writes every series concurrently and waits for all writes.
func (s *Service) writeAll(ctx context.Context, series GlobalSeriesCollection) (int, []WriteFailure) {
	if s.sink == nil {
		return 0, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		written  int
		failures []WriteFailure
		sem      = make(chan struct{}, s.concurrency)
	)

	for key, cs := range series {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			err := s.sink.Write(ctx, key, cs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("series write failed for %s: %v", key, err)
				failures = append(failures, WriteFailure{Key: key, Err: err})
				return
			}
			written++
		}()
	}

	wg.Wait()

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Key < failures[j].Key
	})
	return written, failures
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Dashboard, error) {
	if s.store == nil {
		return Dashboard{}, fmt.Errorf("no store configured")
	}
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Dashboard, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	return s.store.GetRange(from, to)
}

// GetSeries delegates to the underlying store.
func (s *Service) GetSeries(key string) (*CountrySeries, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	return s.store.GetSeries(key)
}
