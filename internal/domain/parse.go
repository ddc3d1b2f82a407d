package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// featureCollection is the top-level GeoJSON document. Features stay raw so a
// single malformed feature cannot fail the whole batch.
type featureCollection struct {
	Features json.RawMessage `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
}

// ParseFeed decodes a USGS GeoJSON FeatureCollection into earthquakes, in feed
// order. It never fails: undecodable input yields an empty, non-nil slice.
func ParseFeed(body string) []Earthquake {
	quakes, _, _ := DecodeFeed(body)
	return quakes
}

// DecodeFeed is ParseFeed with diagnostics: it also reports how many features
// were dropped and, when the top-level structure was unusable, an error
// wrapping ErrDecode. The returned slice is never nil.
func DecodeFeed(body string) ([]Earthquake, int, error) {
	quakes := []Earthquake{}

	if strings.TrimSpace(body) == "" {
		return quakes, 0, fmt.Errorf("%w: empty body", ErrDecode)
	}

	var fc featureCollection
	if err := json.Unmarshal([]byte(body), &fc); err != nil {
		return quakes, 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(fc.Features) == 0 || string(fc.Features) == "null" {
		return quakes, 0, fmt.Errorf("%w: missing features", ErrDecode)
	}

	var rawFeatures []json.RawMessage
	if err := json.Unmarshal(fc.Features, &rawFeatures); err != nil {
		return quakes, 0, fmt.Errorf("%w: features: %w", ErrDecode, err)
	}

	dropped := 0
	for _, raw := range rawFeatures {
		q, ok := decodeFeature(raw)
		if !ok {
			dropped++
			continue
		}
		quakes = append(quakes, q)
	}
	return quakes, dropped, nil
}

// decodeFeature reads one feature's properties. It reports false when the
// feature or its properties are not JSON objects.
func decodeFeature(raw json.RawMessage) (Earthquake, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var f feature
	if err := dec.Decode(&f); err != nil || f.Properties == nil {
		return Earthquake{}, false
	}

	return Earthquake{
		Magnitude:  floatProperty(f.Properties, "mag"),
		Location:   stringProperty(f.Properties, "place"),
		TimeMillis: int64Property(f.Properties, "time"),
		URL:        stringProperty(f.Properties, "url"),
	}, true
}

// floatProperty returns a finite number for key, coercing numeric strings.
// Anything else is 0.
func floatProperty(props map[string]any, key string) float64 {
	var v float64
	switch val := props[key].(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		v = f
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// int64Property returns an integer for key. Fractional numbers are truncated
// toward zero and numeric strings are coerced. Anything else is 0.
func int64Property(props map[string]any, key string) int64 {
	var s string
	switch val := props[key].(type) {
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
	default:
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(f)
}

// stringProperty returns the string for key. Numbers and booleans are
// rendered as text; null, objects and arrays are "".
func stringProperty(props map[string]any, key string) string {
	switch val := props[key].(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
