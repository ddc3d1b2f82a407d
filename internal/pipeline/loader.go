package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
)

// ErrFetchInProgress is returned by Start while a previous load is still running.
var ErrFetchInProgress = errors.New("earthquake fetch already in progress")

// Fetcher retrieves the raw feed body for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Publisher forwards a successful load to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, result domain.Result) error
}

// Loader runs the fetch-and-parse pipeline for one query URL. At most one
// load runs at a time; the latest completed result is kept for readers.
type Loader struct {
	fetcher   Fetcher
	publisher Publisher
	url       string
	logger    *slog.Logger
	metrics   *observability.Metrics

	inFlight atomic.Bool
	latest   atomic.Pointer[domain.Result]
}

// NewLoader creates a Loader. publisher may be nil.
func NewLoader(fetcher Fetcher, publisher Publisher, url string, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		fetcher:   fetcher,
		publisher: publisher,
		url:       url,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start runs a load on a background goroutine and returns a Task for its
// result. It returns ErrFetchInProgress instead of starting a second load.
func (l *Loader) Start(ctx context.Context) (*Task, error) {
	if !l.inFlight.CompareAndSwap(false, true) {
		return nil, ErrFetchInProgress
	}
	l.metrics.LoadsInFlight.Set(1)

	t := newTask()
	go func() {
		defer t.complete()
		defer func() {
			l.metrics.LoadsInFlight.Set(0)
			l.inFlight.Store(false)
		}()
		t.result = l.load(ctx)
	}()
	return t, nil
}

// Load runs a load on the calling goroutine. It shares the single-flight
// guard with Start.
func (l *Loader) Load(ctx context.Context) (domain.Result, error) {
	t, err := l.Start(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	return t.Wait(ctx)
}

// Refresh starts a load detached from ctx's cancellation so it outlives the
// request that triggered it.
func (l *Loader) Refresh(ctx context.Context) error {
	_, err := l.Start(context.WithoutCancel(ctx))
	return err
}

// Latest returns the most recent completed result.
func (l *Loader) Latest() (domain.Result, bool) {
	r := l.latest.Load()
	if r == nil {
		return domain.Result{}, false
	}
	return *r, true
}

// CheckReadiness returns nil once a load has completed, whatever its outcome.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if l.latest.Load() == nil {
		return errors.New("no earthquake load has completed yet")
	}
	return nil
}

// load fetches, parses, and publishes. Errors are absorbed into the result;
// a failed load still replaces the previous result wholesale.
func (l *Loader) load(ctx context.Context) domain.Result {
	body, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		l.logger.Warn("earthquake fetch failed",
			"url", l.url,
			"status", domain.StatusCode(err),
			"error", err,
		)
		return l.store(domain.NewResult(nil, err))
	}

	quakes, dropped, err := domain.DecodeFeed(body)
	if err != nil {
		l.logger.Warn("earthquake feed decode failed", "error", err, "bytes", len(body))
		l.metrics.DecodeFailures.Inc()
	}
	if dropped > 0 {
		l.logger.Warn("dropped malformed features", "dropped", dropped)
		l.metrics.FeaturesDropped.Add(float64(dropped))
	}
	l.metrics.EarthquakesParsed.Add(float64(len(quakes)))

	result := domain.NewResult(quakes, nil)
	l.logger.Info("earthquakes loaded", "count", len(quakes))

	if l.publisher != nil && !result.Empty() {
		if err := l.publisher.Publish(ctx, result); err != nil {
			l.logger.Error("publish earthquakes failed", "error", err, "count", len(quakes))
		}
	}
	return l.store(result)
}

func (l *Loader) store(r domain.Result) domain.Result {
	l.latest.Store(&r)
	l.metrics.LastLoadUnixMs.Set(float64(r.FetchedAt.UnixMilli()))
	return r
}
