package presenter

import (
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-report/internal/domain"
)

const (
	testQueposPlace = "5km of Quepos, Costa Rica"
	testEventURL    = "https://earthquake.usgs.gov/earthquakes/eventpage/us20004vvx"
	testTimeMillis  = 1454124312220 // 2016-01-30T03:25:12.220Z
)

func TestMagnitudeColorFor(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      MagnitudeColor
	}{
		{0, Magnitude1},
		{0.5, Magnitude1},
		{1.9, Magnitude1},
		{2.0, Magnitude2},
		{3.7, Magnitude3},
		{4.0, Magnitude4},
		{5.99, Magnitude5},
		{6.2, Magnitude6},
		{7.0, Magnitude7},
		{8.1, Magnitude8},
		{9.99, Magnitude9},
		{10.0, Magnitude10Plus},
		{12.5, Magnitude10Plus},
		{-0.1, Magnitude10Plus},
		{-1.0, Magnitude10Plus},
		{math.NaN(), Magnitude10Plus},
		{math.Inf(1), Magnitude10Plus},
		{math.Inf(-1), Magnitude10Plus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MagnitudeColorFor(tt.magnitude), "magnitude %v", tt.magnitude)
		assert.Equal(t, tt.want, MagnitudeColorFor(tt.magnitude), "magnitude %v is deterministic", tt.magnitude)
	}
}

func TestMagnitudeColor_HexAndName(t *testing.T) {
	assert.Equal(t, "#4A7BA7", Magnitude1.Hex())
	assert.Equal(t, "#C03823", Magnitude10Plus.Hex())
	assert.Equal(t, "magnitude6", Magnitude6.String())
	assert.Equal(t, "magnitude10plus", Magnitude10Plus.String())
	assert.Equal(t, "unknown", MagnitudeColor(0).String())
	assert.Equal(t, Magnitude10Plus.Hex(), MagnitudeColor(42).Hex())

	seen := map[string]bool{}
	for c := Magnitude1; c <= Magnitude10Plus; c++ {
		assert.Regexp(t, `^#[0-9A-F]{6}$`, c.Hex())
		assert.False(t, seen[c.Hex()], "duplicate colour for %s", c)
		seen[c.Hex()] = true
	}
}

func TestMagnitudeColor_TextRoundTrip(t *testing.T) {
	text, err := Magnitude8.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "magnitude8", string(text))

	var c MagnitudeColor
	require.NoError(t, c.UnmarshalText(text))
	assert.Equal(t, Magnitude8, c)

	assert.Error(t, c.UnmarshalText([]byte("magenta")))
}

func TestFormatMagnitude(t *testing.T) {
	tests := []struct {
		magnitude float64
		want      string
	}{
		{6.0, "6.0"},
		{6, "6.0"},
		{0, "0.0"},
		{7.23, "7.2"},
		{4.96, "5.0"},
		{6.25, "6.2"}, // tie rounds to even
		{6.75, "6.8"}, // tie rounds to even
		{10.05, "10.1"},
		{-1.5, "-1.5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMagnitude(tt.magnitude), "magnitude %v", tt.magnitude)
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		wantOffset  string
		wantPrimary string
	}{
		{"with separator", testQueposPlace, "5km of ", "Quepos, Costa Rica"},
		{"compass offset", "88km N of Yelizovo, Russia", "88km N of ", "Yelizovo, Russia"},
		{"no separator", "Costa Rica", NearThe, "Costa Rica"},
		{"first separator wins", "10km S of Isle of Man", "10km S of ", "Isle of Man"},
		{"separator needs spaces", "Gulf ofAlaska", NearThe, "Gulf ofAlaska"},
		{"empty", "", NearThe, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, primary := SplitLocation(tt.location)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantPrimary, primary)
		})
	}
}

func TestPresenter_DateAndTime(t *testing.T) {
	p := New(time.UTC)
	assert.Equal(t, "Jan 30, 2016", p.FormatDate(testTimeMillis))
	assert.Equal(t, "3:25 AM", p.FormatTime(testTimeMillis))

	costaRica, err := time.LoadLocation("America/Costa_Rica")
	require.NoError(t, err)
	p = New(costaRica)
	assert.Equal(t, "Jan 29, 2016", p.FormatDate(testTimeMillis))
	assert.Equal(t, "9:25 PM", p.FormatTime(testTimeMillis))
}

func TestPresenter_FormatRow(t *testing.T) {
	p := New(time.UTC)
	q := domain.Earthquake{Magnitude: 7.2, Location: "88km N of Yelizovo, Russia", TimeMillis: testTimeMillis, URL: testEventURL}

	row := p.FormatRow(q, nil)
	require.NotNil(t, row)
	assert.Equal(t, Row{
		Magnitude: "7.2",
		Color:     Magnitude7,
		ColorHex:  Magnitude7.Hex(),
		Offset:    "88km N of ",
		Primary:   "Yelizovo, Russia",
		Date:      "Jan 30, 2016",
		Time:      "3:25 AM",
		URL:       testEventURL,
	}, *row)
}

func TestPresenter_FormatRowReusesContainer(t *testing.T) {
	p := New(time.UTC)
	reuse := &Row{Magnitude: "9.9", Offset: "stale", URL: "stale"}

	got := p.FormatRow(domain.Earthquake{Magnitude: 2.5, Location: "Costa Rica"}, reuse)

	assert.Same(t, reuse, got)
	assert.Equal(t, "2.5", reuse.Magnitude)
	assert.Equal(t, Magnitude2, reuse.Color)
	assert.Equal(t, NearThe, reuse.Offset)
	assert.Equal(t, "Costa Rica", reuse.Primary)
	assert.Empty(t, reuse.URL)
	assert.Equal(t, "Jan 01, 1970", reuse.Date)
}

func TestPresenter_FormatRowsRecyclesBackingArray(t *testing.T) {
	p := New(time.UTC)
	quakes := []domain.Earthquake{
		{Magnitude: 6.1, Location: testQueposPlace},
		{Magnitude: 3.0, Location: "Costa Rica"},
	}

	rows := p.FormatRows(quakes, nil)
	require.Len(t, rows, 2)
	first := &rows[0]

	again := p.FormatRows(quakes[:1], rows)
	require.Len(t, again, 1)
	assert.Same(t, first, &again[0])
	assert.Equal(t, "6.1", again[0].Magnitude)

	empty := p.FormatRows(nil, rows)
	assert.Empty(t, empty)
}

func TestNew_NilLocationIsLocal(t *testing.T) {
	assert.Equal(t, time.Local, New(nil).loc)
}
