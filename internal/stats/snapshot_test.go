package stats

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/guregu/null/v6"
)

func TestBuildSnapshot_AttachesPrevFields(t *testing.T) {
	buckets := DateBucket{
		"2021-06-05": {rec("2021-06-05", "CC1", 100, 2)},
		"2021-06-04": {rec("2021-06-04", "CC1", 80, 1)},
	}

	snap, err := BuildSnapshot(buckets, "2021-06-05", "2021-06-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snap))
	}

	got := snap[0]
	if got.Confirmed != 100 || got.ConfirmedPrev != null.IntFrom(80) {
		t.Errorf("confirmed=%d confirmedPrev=%v, want 100 and 80", got.Confirmed, got.ConfirmedPrev)
	}
	if got.DeathPrev != null.IntFrom(1) {
		t.Errorf("deathPrev = %v, want 1", got.DeathPrev)
	}
	// Missing optional values on the prior record default to 0 but are present.
	for name, v := range map[string]null.Int{
		"negativePrev": got.NegativePrev,
		"releasedPrev": got.ReleasedPrev,
		"testedPrev":   got.TestedPrev,
	} {
		if !v.Valid || v.Int64 != 0 {
			t.Errorf("%s = %v, want valid 0", name, v)
		}
	}
}

func TestBuildSnapshot_CopiesOptionalPrevValues(t *testing.T) {
	prev := rec("2021-06-04", "KR", 80, 1)
	prev.Released = null.IntFrom(60)
	prev.Negative = null.IntFrom(1000)
	prev.Tested = null.IntFrom(1200)

	buckets := DateBucket{
		"2021-06-05": {rec("2021-06-05", "KR", 100, 2)},
		"2021-06-04": {prev},
	}

	snap, err := BuildSnapshot(buckets, "2021-06-05", "2021-06-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := snap[0]
	if got.ReleasedPrev.Int64 != 60 || got.NegativePrev.Int64 != 1000 || got.TestedPrev.Int64 != 1200 {
		t.Errorf("prev values = %d/%d/%d, want 60/1000/1200",
			got.ReleasedPrev.Int64, got.NegativePrev.Int64, got.TestedPrev.Int64)
	}
}

func TestBuildSnapshot_NoYesterdayRecord(t *testing.T) {
	tests := []struct {
		name    string
		buckets DateBucket
	}{
		{
			name: "empty yesterday bucket",
			buckets: DateBucket{
				"2021-06-05": {rec("2021-06-05", "CC2", 50, 0)},
				"2021-06-04": {},
			},
		},
		{
			name: "no yesterday bucket",
			buckets: DateBucket{
				"2021-06-05": {rec("2021-06-05", "CC2", 50, 0)},
			},
		},
		{
			name: "country absent yesterday",
			buckets: DateBucket{
				"2021-06-05": {rec("2021-06-05", "CC2", 50, 0)},
				"2021-06-04": {rec("2021-06-04", "CC3", 10, 0)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := BuildSnapshot(tt.buckets, "2021-06-05", "2021-06-04")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(snap) != 1 {
				t.Fatalf("expected 1 record, got %d", len(snap))
			}
			if snap[0].HasPrev() {
				t.Errorf("expected no prev fields, got %+v", snap[0])
			}

			body, err := json.Marshal(snap[0])
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if strings.Contains(string(body), "Prev") {
				t.Errorf("expected no Prev keys in JSON, got %s", body)
			}
		})
	}
}

func TestBuildSnapshot_MissingToday(t *testing.T) {
	buckets := DateBucket{
		"2021-06-04": {rec("2021-06-04", "KR", 80, 1)},
	}

	_, err := BuildSnapshot(buckets, "2021-06-05", "2021-06-04")

	var missing *MissingDataError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDataError, got %v", err)
	}
	if missing.Date != "2021-06-05" {
		t.Errorf("missing date = %s, want 2021-06-05", missing.Date)
	}
}

func TestBuildSnapshot_EmptyTodayBucketIsNotMissing(t *testing.T) {
	buckets := DateBucket{"2021-06-05": {}}

	snap, err := BuildSnapshot(buckets, "2021-06-05", "2021-06-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %d records", len(snap))
	}
}

func TestSnapshotRecord_JSONShape(t *testing.T) {
	buckets := DateBucket{
		"2021-06-05": {rec("2021-06-05", "KR", 100, 2)},
		"2021-06-04": {rec("2021-06-04", "KR", 80, 1)},
	}
	snap, err := BuildSnapshot(buckets, "2021-06-05", "2021-06-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := json.Marshal(snap[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Today's record fields sit at the top level alongside the Prev fields.
	for _, k := range []string{"date", "cc", "confirmed", "death", "confirmedPrev", "deathPrev", "negativePrev", "releasedPrev", "testedPrev"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("expected key %q in %s", k, body)
		}
	}
	// Absent optional fields on today's record stay absent.
	for _, k := range []string{"released", "negative", "tested"} {
		if _, ok := fields[k]; ok {
			t.Errorf("expected key %q to be omitted in %s", k, body)
		}
	}
	if fields["releasedPrev"] != float64(0) {
		t.Errorf("releasedPrev = %v, want 0", fields["releasedPrev"])
	}
}
