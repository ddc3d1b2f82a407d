// Package cli implements the quakereport command-line interface.
//
// # Commands
//
//   - list: fetch the feed once and print one coloured row per earthquake
//   - browse: interactive list; Enter opens the event page in a browser
//   - serve: HTTP service with probes, metrics and the latest rows
//   - publish: fetch once and forward every earthquake to Kafka
//
// Settings come from the environment (see internal/config); the query flags
// --min-magnitude, --order-by, --limit and --url override it per invocation.
//
// # Logging
//
// Logs go to stderr through the slog logger built by observability.NewLogger.
// --verbose (-v) switches it to debug level.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/quake-report/internal/adapter/kafka"
	"github.com/couchcryptid/quake-report/internal/config"
	"github.com/couchcryptid/quake-report/internal/observability"
	"github.com/couchcryptid/quake-report/internal/pipeline"
)

// publishCloser is a Publisher that holds a connection to release.
type publishCloser interface {
	pipeline.Publisher
	Close() error
}

// app carries what every command needs. The factory fields are swapped in tests.
type app struct {
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger

	newMetrics   func() *observability.Metrics
	newPublisher func(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) publishCloser
	startProcess func(name string, args ...string) error
	runProgram   func(ctx context.Context, m browseModel, in io.Reader, out io.Writer) error
}

func newApp(stderr io.Writer) *app {
	return &app{
		stderr:     stderr,
		newMetrics: observability.NewMetrics,
		newPublisher: func(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) publishCloser {
			return kafka.NewWriter(cfg, metrics, logger)
		},
		startProcess: startProcess,
		runProgram:   runProgram,
	}
}

// Execute runs the quakereport CLI with os.Args and returns the first error
// a command reports.
func Execute(ctx context.Context) error {
	return newRootCmd(newApp(os.Stderr)).ExecuteContext(ctx)
}
