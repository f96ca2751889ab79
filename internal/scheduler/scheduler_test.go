package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

type fakeRefresher struct {
	anchors []time.Time
	err     error
}

func (f *fakeRefresher) Refresh(_ context.Context, anchor time.Time) (*stats.RefreshResult, error) {
	f.anchors = append(f.anchors, anchor)
	if f.err != nil {
		return nil, f.err
	}
	return &stats.RefreshResult{Dashboard: stats.Dashboard{RunID: "run"}}, nil
}

func TestRunOnce_PassesAnchor(t *testing.T) {
	pinned := time.Date(2021, 6, 5, 0, 0, 0, 0, time.UTC)
	r := &fakeRefresher{}
	s := New(r, func(time.Time) (time.Time, error) { return pinned, nil }, "", time.Hour, false)

	s.RunOnce()

	if len(r.anchors) != 1 || !r.anchors[0].Equal(pinned) {
		t.Errorf("expected one refresh at %v, got %v", pinned, r.anchors)
	}
}

func TestRunOnce_SwallowsErrors(t *testing.T) {
	r := &fakeRefresher{err: &stats.MissingDataError{Date: "2021-06-05"}}
	s := New(r, func(now time.Time) (time.Time, error) { return now, nil }, "", time.Hour, false)

	s.RunOnce()

	if len(r.anchors) != 1 {
		t.Errorf("expected refresh to be attempted, got %d", len(r.anchors))
	}

	// An anchor error skips the refresh entirely.
	r2 := &fakeRefresher{}
	s2 := New(r2, func(time.Time) (time.Time, error) { return time.Time{}, errors.New("bad anchor") }, "", time.Hour, false)
	s2.RunOnce()
	if len(r2.anchors) != 0 {
		t.Errorf("expected no refresh on anchor error, got %d", len(r2.anchors))
	}
}

func TestStartAndStop(t *testing.T) {
	tests := []struct {
		name     string
		cronExpr string
	}{
		{name: "interval"},
		{name: "cron", cronExpr: "0 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRefresher{}
			s := New(r, func(now time.Time) (time.Time, error) { return now, nil }, tt.cronExpr, time.Hour, false)
			if err := s.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			s.Stop()
		})
	}
}
