package stats

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ReferenceDates returns the anchor date and the day before it, both as date
// keys in the given time zone.
func ReferenceDates(anchor time.Time, loc *time.Location) (today, yesterday string) {
	if loc == nil {
		loc = time.UTC
	}
	t := anchor.In(loc)
	return t.Format(DateLayout), t.AddDate(0, 0, -1).Format(DateLayout)
}

// ParseAnchor parses a date key as UTC midnight.
func ParseAnchor(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q: %w", s, err)
	}
	return t, nil
}

// SortedDates returns the distinct bucket keys in ascending calendar order.
// If any key is not a valid date, all keys are sorted as plain strings.
func SortedDates(buckets DateBucket) []string {
	dates := make([]string, 0, len(buckets))
	parsed := make(map[string]time.Time, len(buckets))
	calendar := true
	for d := range buckets {
		dates = append(dates, d)
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			calendar = false
			continue
		}
		parsed[d] = t
	}

	if !calendar {
		slices.Sort(dates)
		return dates
	}
	slices.SortFunc(dates, func(a, b string) int {
		if c := parsed[a].Compare(parsed[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return dates
}
