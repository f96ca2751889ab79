package stats

import (
	"encoding/json"
	"time"

	"github.com/guregu/null/v6"

	"github.com/i474232898/coronaboard-data/internal/refdata"
)

// AggregateKey is the reserved series key holding the sum across all countries.
const AggregateKey = "global"

// DateLayout is the ISO calendar date format used for record dates and bucket keys.
const DateLayout = "2006-01-02"

// DailyStatRecord is one country's statistics for one calendar date.
// Released, Negative and Tested may be absent upstream; they are then invalid
// and count as 0 wherever arithmetic is done.
type DailyStatRecord struct {
	Date      string   `json:"date"`
	CC        string   `json:"cc"`
	Confirmed int64    `json:"confirmed"`
	Death     int64    `json:"death"`
	Released  null.Int `json:"released,omitzero"`
	Negative  null.Int `json:"negative,omitzero"`
	Tested    null.Int `json:"tested,omitzero"`
}

// DateBucket maps a date key to the records published for that date.
type DateBucket map[string][]DailyStatRecord

// SnapshotRecord is a reference-date record extended with the prior day's values.
// The Prev fields are either all valid (a prior-day record exists for the
// country) or all invalid, in which case they are omitted from JSON.
type SnapshotRecord struct {
	DailyStatRecord

	ConfirmedPrev null.Int `json:"confirmedPrev,omitzero"`
	DeathPrev     null.Int `json:"deathPrev,omitzero"`
	NegativePrev  null.Int `json:"negativePrev,omitzero"`
	ReleasedPrev  null.Int `json:"releasedPrev,omitzero"`
	TestedPrev    null.Int `json:"testedPrev,omitzero"`
}

// HasPrev reports whether prior-day values were attached.
func (s SnapshotRecord) HasPrev() bool {
	return s.ConfirmedPrev.Valid
}

// CountrySeries holds parallel chart sequences for one country or the aggregate.
// Position i of every slice refers to the same date; dates strictly ascend.
type CountrySeries struct {
	Date         []string `json:"date"`
	Confirmed    []int64  `json:"confirmed"`
	ConfirmedAcc []int64  `json:"confirmedAcc"`
	Death        []int64  `json:"death"`
	DeathAcc     []int64  `json:"deathAcc"`
	Released     []int64  `json:"released"`
	ReleasedAcc  []int64  `json:"releasedAcc"`
}

// Len returns the number of points in the series.
func (s *CountrySeries) Len() int {
	return len(s.Date)
}

// GlobalSeriesCollection maps a country code (or AggregateKey) to its series.
type GlobalSeriesCollection map[string]*CountrySeries

// Dashboard is the caller-facing result of a refresh.
type Dashboard struct {
	LastUpdated   time.Time                  `json:"-"`
	RunID         string                     `json:"runId"`
	ReferenceDate string                     `json:"referenceDate"`
	GlobalStats   []SnapshotRecord           `json:"globalStats"`
	CountryByCC   map[string]refdata.Country `json:"countryByCc"`
	Notice        []refdata.Notice           `json:"notice"`
}

// dashboardJSON carries lastUpdated as unix milliseconds for the front end.
type dashboardJSON struct {
	LastUpdated int64 `json:"lastUpdated"`
	dashboardAlias
}

type dashboardAlias Dashboard

// MarshalJSON encodes LastUpdated as unix milliseconds.
func (d Dashboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(dashboardJSON{
		LastUpdated:    d.LastUpdated.UnixMilli(),
		dashboardAlias: dashboardAlias(d),
	})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	var aux dashboardJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Dashboard(aux.dashboardAlias)
	d.LastUpdated = time.UnixMilli(aux.LastUpdated).UTC()
	return nil
}

// WriteFailure records a sink write that failed for one series key.
type WriteFailure struct {
	Key string `json:"key"`
	Err error  `json:"-"`
}

// MarshalJSON includes the error text.
func (w WriteFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if w.Err != nil {
		msg = w.Err.Error()
	}
	return json.Marshal(struct {
		Key   string `json:"key"`
		Error string `json:"error"`
	}{Key: w.Key, Error: msg})
}

// RefreshResult is everything a single refresh produced.
type RefreshResult struct {
	Dashboard     Dashboard
	Series        GlobalSeriesCollection
	Written       int
	WriteFailures []WriteFailure
}
