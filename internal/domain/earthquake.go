package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Earthquake is a single event from the USGS feed.
type Earthquake struct {
	Magnitude  float64 `json:"magnitude"`
	Location   string  `json:"location"`
	TimeMillis int64   `json:"time"` // epoch milliseconds, UTC
	URL        string  `json:"url"`
}

// OccurredAt returns the origin time as a time.Time in UTC.
// The zero timestamp maps to the Unix epoch, not the zero time.Time.
func (e Earthquake) OccurredAt() time.Time {
	return time.UnixMilli(e.TimeMillis).UTC()
}

// Key produces a deterministic identifier from the event's fields.
// The feed has no stable ID in the properties we read, so equal records
// always produce equal keys and republishing the same load is idempotent.
func (e Earthquake) Key() string {
	input := fmt.Sprintf("%g|%s|%d|%s", e.Magnitude, e.Location, e.TimeMillis, e.URL)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}

// Empty-state messages shown when a load produces no rows.
const (
	NoEarthquakesMessage = "No earthquakes found."
	NoConnectionMessage  = "No internet connection."
)

// Result is the outcome of one fetch-and-parse load. Earthquakes is never nil.
// Err holds the absorbed fetch error, if any; hosts only use it to pick an
// empty-state message and for logging.
type Result struct {
	Earthquakes []Earthquake `json:"earthquakes"`
	FetchedAt   time.Time    `json:"fetched_at"`
	Err         error        `json:"-"`
}

// NewResult stamps a load outcome with the current time.
func NewResult(quakes []Earthquake, err error) Result {
	if quakes == nil {
		quakes = []Earthquake{}
	}
	return Result{
		Earthquakes: quakes,
		FetchedAt:   clock.Now(),
		Err:         err,
	}
}

// Empty reports whether the load produced no earthquakes.
func (r Result) Empty() bool {
	return len(r.Earthquakes) == 0
}

// EmptyState returns the message to show in place of an empty list, or ""
// when there is something to show.
func (r Result) EmptyState() string {
	if !r.Empty() {
		return ""
	}
	if IsTransportError(r.Err) {
		return NoConnectionMessage
	}
	return NoEarthquakesMessage
}
