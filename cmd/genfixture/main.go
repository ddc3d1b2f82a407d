// Command genfixture reads a raw USGS GeoJSON response and writes the
// decoded records and formatted rows as JSON fixtures. It runs the real
// domain and presenter packages so fixtures match what the client produces.
//
// Usage:
//
//	curl -o feed.json 'https://earthquake.usgs.gov/fdsnws/event/1/query?format=geojson&minmag=6&limit=10'
//	go run ./cmd/genfixture \
//	  -feed feed.json \
//	  -records-out data/mock/earthquakes.json \
//	  -rows-out data/mock/rows.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/presenter"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedPath := flag.String("feed", "", "raw USGS GeoJSON response")
	recordsOut := flag.String("records-out", "", "output path for the decoded records fixture")
	rowsOut := flag.String("rows-out", "", "output path for the formatted rows fixture")
	tz := flag.String("tz", "UTC", "time zone for row date and time labels")
	flag.Parse()

	if *feedPath == "" || *recordsOut == "" || *rowsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -feed, -records-out, -rows-out")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}

	body, err := os.ReadFile(*feedPath)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}

	// Set a fixed clock for reproducible FetchedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2016, time.January, 30, 4, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	quakes, dropped, err := domain.DecodeFeed(string(body))
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Printf("dropped %d malformed features", dropped)
	}
	result := domain.NewResult(quakes, nil)
	rows := presenter.New(loc).FormatRows(result.Earthquakes, nil)

	if err := writeJSON(*recordsOut, result); err != nil {
		return fmt.Errorf("writing records fixture: %w", err)
	}
	log.Printf("wrote records fixture: %s (%d earthquakes)", *recordsOut, len(result.Earthquakes))

	if err := writeJSON(*rowsOut, rows); err != nil {
		return fmt.Errorf("writing rows fixture: %w", err)
	}
	log.Printf("wrote rows fixture: %s", *rowsOut)

	printStats(rows)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats logs how many rows fall in each magnitude colour bucket and how
// many places lacked an "of" offset.
func printStats(rows []presenter.Row) {
	buckets := map[presenter.MagnitudeColor]int{}
	nearThe := 0
	for _, r := range rows {
		buckets[r.Color]++
		if r.Offset == presenter.NearThe {
			nearThe++
		}
	}

	colors := make([]presenter.MagnitudeColor, 0, len(buckets))
	for c := range buckets {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })

	for _, c := range colors {
		log.Printf("  %-16s %s  %d", c, c.Hex(), buckets[c])
	}
	log.Printf("  without offset   %d", nearThe)
}
