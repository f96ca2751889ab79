package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

func TestSQLiteSink_Upsert(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "series.db"))
	if err != nil {
		t.Fatalf("NewSQLiteSink failed: %v", err)
	}
	defer sink.Close()

	ctx := context.Background()
	if err := sink.Write(ctx, stats.AggregateKey, sampleSeries()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	updated := sampleSeries()
	updated.Date = append(updated.Date, "2021-06-06")
	updated.ConfirmedAcc = append(updated.ConfirmedAcc, 130)
	if err := sink.Write(ctx, stats.AggregateKey, updated); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, err := sink.Read(ctx, stats.AggregateKey)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !slices.Equal(got.ConfirmedAcc, []int64{80, 100, 130}) {
		t.Errorf("expected the second write to replace the first, got %v", got.ConfirmedAcc)
	}

	if _, err := sink.Read(ctx, "ZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
