package presenter

import (
	"fmt"
	"math"
)

// MagnitudeColor identifies the badge colour for a magnitude bucket.
type MagnitudeColor int

const (
	Magnitude1 MagnitudeColor = iota + 1
	Magnitude2
	Magnitude3
	Magnitude4
	Magnitude5
	Magnitude6
	Magnitude7
	Magnitude8
	Magnitude9
	Magnitude10Plus
)

var colorHex = map[MagnitudeColor]string{
	Magnitude1:      "#4A7BA7",
	Magnitude2:      "#04B4B3",
	Magnitude3:      "#10CAC9",
	Magnitude4:      "#F5A623",
	Magnitude5:      "#FF7D50",
	Magnitude6:      "#FC6644",
	Magnitude7:      "#E75F40",
	Magnitude8:      "#E13A20",
	Magnitude9:      "#D93218",
	Magnitude10Plus: "#C03823",
}

var colorNames = map[MagnitudeColor]string{
	Magnitude1:      "magnitude1",
	Magnitude2:      "magnitude2",
	Magnitude3:      "magnitude3",
	Magnitude4:      "magnitude4",
	Magnitude5:      "magnitude5",
	Magnitude6:      "magnitude6",
	Magnitude7:      "magnitude7",
	Magnitude8:      "magnitude8",
	Magnitude9:      "magnitude9",
	Magnitude10Plus: "magnitude10plus",
}

// MagnitudeColorFor buckets a magnitude by its floor: 0 and 1 are Magnitude1,
// 2 through 9 map to their own bucket, and everything else, including
// negative, NaN and infinite values, is Magnitude10Plus.
func MagnitudeColorFor(magnitude float64) MagnitudeColor {
	floor := math.Floor(magnitude)
	switch {
	case floor >= 0 && floor <= 1:
		return Magnitude1
	case floor >= 2 && floor <= 9:
		return MagnitudeColor(int(floor))
	default:
		return Magnitude10Plus
	}
}

// Hex returns the colour as "#RRGGBB".
func (c MagnitudeColor) Hex() string {
	if h, ok := colorHex[c]; ok {
		return h
	}
	return colorHex[Magnitude10Plus]
}

func (c MagnitudeColor) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the colour by name so JSON rows stay readable.
func (c MagnitudeColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *MagnitudeColor) UnmarshalText(text []byte) error {
	for color, name := range colorNames {
		if name == string(text) {
			*c = color
			return nil
		}
	}
	return fmt.Errorf("unknown magnitude color %q", text)
}
