package stats

import "github.com/i474232898/coronaboard-data/internal/logger"

// point is one date's cumulative values for a series.
type point struct {
	confirmed int64
	death     int64
	released  int64
}

func pointOf(r DailyStatRecord) point {
	return point{
		confirmed: r.Confirmed,
		death:     r.Death,
		released:  r.Released.ValueOrZero(),
	}
}

// BuildSeries derives per-country and aggregate cumulative and incremental
// series. Dates are visited in ascending order; a country with no record on a
// date gets no point for it.
//
// The aggregate diffs against its own last cumulative value, so when countries
// join or leave between dates its increment is not the sum of the visible
// per-country increments. Records carrying the reserved AggregateKey as their
// country code are skipped.
func BuildSeries(buckets DateBucket) GlobalSeriesCollection {
	series := make(GlobalSeriesCollection)

	for _, date := range SortedDates(buckets) {
		var sum point
		for _, r := range buckets[date] {
			if r.CC == AggregateKey {
				logger.Warn("skipping record on %s: country code %q is reserved", date, r.CC)
				continue
			}
			p := pointOf(r)
			series.get(r.CC).push(date, p)

			sum.confirmed += p.confirmed
			sum.death += p.death
			sum.released += p.released
		}
		series.get(AggregateKey).push(date, sum)
	}

	return series
}

// get returns the series for key, creating an empty one on first sight.
func (c GlobalSeriesCollection) get(key string) *CountrySeries {
	s, ok := c[key]
	if !ok {
		s = &CountrySeries{}
		c[key] = s
	}
	return s
}

func (s *CountrySeries) push(date string, p point) {
	if n := len(s.Date); n == 0 {
		s.Confirmed = append(s.Confirmed, p.confirmed)
		s.Death = append(s.Death, p.death)
		s.Released = append(s.Released, p.released)
	} else {
		s.Confirmed = append(s.Confirmed, p.confirmed-s.ConfirmedAcc[n-1])
		s.Death = append(s.Death, p.death-s.DeathAcc[n-1])
		s.Released = append(s.Released, p.released-s.ReleasedAcc[n-1])
	}

	s.ConfirmedAcc = append(s.ConfirmedAcc, p.confirmed)
	s.DeathAcc = append(s.DeathAcc, p.death)
	s.ReleasedAcc = append(s.ReleasedAcc, p.released)
	s.Date = append(s.Date, date)
}
