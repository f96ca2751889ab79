package stats

import "github.com/guregu/null/v6"

// BuildSnapshot produces one record per country published on today, extended
// with yesterday's values for that country when it has a record yesterday.
// It fails with *MissingDataError when today has no bucket at all.
func BuildSnapshot(buckets DateBucket, today, yesterday string) ([]SnapshotRecord, error) {
	todayStats, ok := buckets[today]
	if !ok {
		return nil, &MissingDataError{Date: today}
	}

	prevByCC := make(map[string]DailyStatRecord, len(buckets[yesterday]))
	for _, r := range buckets[yesterday] {
		prevByCC[r.CC] = r
	}

	out := make([]SnapshotRecord, 0, len(todayStats))
	for _, r := range todayStats {
		snap := SnapshotRecord{DailyStatRecord: r}
		if prev, found := prevByCC[r.CC]; found {
			snap.ConfirmedPrev = null.IntFrom(prev.Confirmed)
			snap.DeathPrev = null.IntFrom(prev.Death)
			snap.NegativePrev = null.IntFrom(prev.Negative.ValueOrZero())
			snap.ReleasedPrev = null.IntFrom(prev.Released.ValueOrZero())
			snap.TestedPrev = null.IntFrom(prev.Tested.ValueOrZero())
		}
		out = append(out, snap)
	}
	return out, nil
}
