// Package presenter turns earthquake records into list row view state.
//
// It knows nothing about terminals or HTTP: hosts take a Row and draw it.
// Rows are plain values meant to be recycled, so a host that redraws a list
// can pass last frame's rows back in and avoid reallocating them.
package presenter

import (
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-report/internal/domain"
)

const (
	// LocationSeparator splits "<offset> of <primary>" place strings.
	LocationSeparator = " of "

	// NearThe is the offset shown when a place has no separator.
	NearThe = "Near the"

	DateLayout = "Jan 02, 2006"
	TimeLayout = "3:04 PM"
)

// Row is the view state of one list entry.
type Row struct {
	Magnitude string         `json:"magnitude"`
	Color     MagnitudeColor `json:"color"`
	ColorHex  string         `json:"color_hex"`
	Offset    string         `json:"offset"`
	Primary   string         `json:"primary"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	URL       string         `json:"url"`
}

// Presenter formats rows in a fixed time zone. It is stateless apart from
// the zone and safe for concurrent use.
type Presenter struct {
	loc *time.Location
}

// New creates a Presenter that renders timestamps in loc. A nil loc means time.Local.
func New(loc *time.Location) *Presenter {
	if loc == nil {
		loc = time.Local
	}
	return &Presenter{loc: loc}
}

// FormatRow fills reuse with q's view state and returns it. When reuse is nil
// a new Row is allocated.
func (p *Presenter) FormatRow(q domain.Earthquake, reuse *Row) *Row {
	row := reuse
	if row == nil {
		row = &Row{}
	}

	color := MagnitudeColorFor(q.Magnitude)

	row.Magnitude = FormatMagnitude(q.Magnitude)
	row.Color = color
	row.ColorHex = color.Hex()
	row.Offset, row.Primary = SplitLocation(q.Location)
	row.Date = p.FormatDate(q.TimeMillis)
	row.Time = p.FormatTime(q.TimeMillis)
	row.URL = q.URL
	return row
}

// FormatRows formats quakes in order, writing into rows' backing array when
// it is large enough. Pass the previous result to recycle it.
func (p *Presenter) FormatRows(quakes []domain.Earthquake, rows []Row) []Row {
	if rows == nil || cap(rows) < len(quakes) {
		rows = make([]Row, len(quakes))
	}
	rows = rows[:len(quakes)]
	for i := range quakes {
		p.FormatRow(quakes[i], &rows[i])
	}
	return rows
}

// FormatDate renders an epoch-millisecond timestamp as a calendar date, e.g. "Jan 30, 2016".
func (p *Presenter) FormatDate(millis int64) string {
	return time.UnixMilli(millis).In(p.loc).Format(DateLayout)
}

// FormatTime renders an epoch-millisecond timestamp as a clock time, e.g. "3:25 AM".
func (p *Presenter) FormatTime(millis int64) string {
	return time.UnixMilli(millis).In(p.loc).Format(TimeLayout)
}

// FormatMagnitude renders a magnitude with exactly one decimal place. Ties
// round half to even on the exact binary value, so 6.25 is "6.2" and 6.75 is "6.8".
func FormatMagnitude(magnitude float64) string {
	return strconv.FormatFloat(magnitude, 'f', 1, 64)
}

// SplitLocation splits a place such as "5km N of Quepos, Costa Rica" at the
// first " of " into ("5km N of ", "Quepos, Costa Rica"). Places without the
// separator return (NearThe, location).
func SplitLocation(location string) (offset, primary string) {
	before, after, found := strings.Cut(location, LocationSeparator)
	if !found {
		return NearThe, location
	}
	return before + LocationSeparator, after
}
