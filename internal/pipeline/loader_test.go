package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
	"github.com/couchcryptid/quake-report/internal/pipeline"
)

const (
	testFeedURL = "https://earthquake.usgs.gov/fdsnws/event/1/query?format=geojson"
	testFeed    = `{"features":[
		{"properties":{"mag":7.2,"place":"88km N of Yelizovo, Russia","time":1454124312220,"url":"https://earthquake.usgs.gov/earthquakes/eventpage/us20004vvx"}},
		{"properties":{}},
		"garbage"
	]}`
)

// --- mocks ---

type mockFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	urls  []string
	block chan struct{}
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.body, m.err
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Result
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, result domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, result)
	return m.err
}

func newTestLoader(f pipeline.Fetcher, p pipeline.Publisher) (*pipeline.Loader, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.NewLoader(f, p, testFeedURL, logger, metrics), metrics
}

func freezeClock(t *testing.T) time.Time {
	t.Helper()
	fixed := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })
	return fixed
}

// --- tests ---

func TestLoader_LoadParsesFeed(t *testing.T) {
	fixed := freezeClock(t)
	fetcher := &mockFetcher{body: testFeed}
	publisher := &mockPublisher{}
	loader, metrics := newTestLoader(fetcher, publisher)

	res, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, res.Err)
	require.Len(t, res.Earthquakes, 2)
	assert.Equal(t, 7.2, res.Earthquakes[0].Magnitude)
	assert.Equal(t, domain.Earthquake{}, res.Earthquakes[1])
	assert.Equal(t, fixed, res.FetchedAt)
	assert.Empty(t, res.EmptyState())

	assert.Equal(t, []string{testFeedURL}, fetcher.urls)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, res.Earthquakes, publisher.published[0].Earthquakes)

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.EarthquakesParsed), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FeaturesDropped), 0)
	assert.InDelta(t, float64(fixed.UnixMilli()), testutil.ToFloat64(metrics.LastLoadUnixMs), 0)
}

func TestLoader_HTTPStatusYieldsEmptyState(t *testing.T) {
	freezeClock(t)
	publisher := &mockPublisher{}
	loader, _ := newTestLoader(&mockFetcher{err: &domain.HTTPStatusError{Code: 500}}, publisher)

	res, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, res.Earthquakes)
	assert.Empty(t, res.Earthquakes)
	assert.Equal(t, 500, domain.StatusCode(res.Err))
	assert.Equal(t, domain.NoEarthquakesMessage, res.EmptyState())
	assert.Empty(t, publisher.published)
}

func TestLoader_TransportErrorYieldsNoConnection(t *testing.T) {
	loader, _ := newTestLoader(&mockFetcher{err: &domain.TransportError{Err: errors.New("dial tcp: connection refused")}}, nil)

	res, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NoConnectionMessage, res.EmptyState())
}

func TestLoader_DecodeFailureIsNotSurfaced(t *testing.T) {
	loader, metrics := newTestLoader(&mockFetcher{body: "<html>oops</html>"}, nil)

	res, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.NoError(t, res.Err)
	assert.Empty(t, res.Earthquakes)
	assert.Equal(t, domain.NoEarthquakesMessage, res.EmptyState())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.DecodeFailures), 0)
}

func TestLoader_PublishFailureDoesNotChangeResult(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("broker down")}
	loader, _ := newTestLoader(&mockFetcher{body: testFeed}, publisher)

	res, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NoError(t, res.Err)
	assert.Len(t, res.Earthquakes, 2)
	assert.Len(t, publisher.published, 1)
}

func TestLoader_RejectsConcurrentStart(t *testing.T) {
	fetcher := &mockFetcher{body: testFeed, block: make(chan struct{})}
	loader, metrics := newTestLoader(fetcher, nil)

	task, err := loader.Start(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.LoadsInFlight), 0)

	_, err = loader.Start(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrFetchInProgress)
	assert.ErrorIs(t, loader.Refresh(context.Background()), pipeline.ErrFetchInProgress)

	close(fetcher.block)
	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Earthquakes, 2)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.LoadsInFlight), 0)

	// The guard is released once the task completes.
	next, err := loader.Start(context.Background())
	require.NoError(t, err)
	_, err = next.Wait(context.Background())
	require.NoError(t, err)
}

func TestLoader_LatestAndReadiness(t *testing.T) {
	loader, _ := newTestLoader(&mockFetcher{body: testFeed}, nil)

	_, ok := loader.Latest()
	assert.False(t, ok)
	assert.Error(t, loader.CheckReadiness(context.Background()))

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	latest, ok := loader.Latest()
	require.True(t, ok)
	assert.Len(t, latest.Earthquakes, 2)
	assert.NoError(t, loader.CheckReadiness(context.Background()))
}

func TestLoader_FailedLoadReplacesPrevious(t *testing.T) {
	fetcher := &mockFetcher{body: testFeed}
	loader, _ := newTestLoader(fetcher, nil)

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	fetcher.err = &domain.HTTPStatusError{Code: 503}
	_, err = loader.Load(context.Background())
	require.NoError(t, err)

	latest, ok := loader.Latest()
	require.True(t, ok)
	assert.Empty(t, latest.Earthquakes)
	assert.Equal(t, 503, domain.StatusCode(latest.Err))
}

func TestTask_WaitHonoursContext(t *testing.T) {
	fetcher := &mockFetcher{block: make(chan struct{})}
	loader, _ := newTestLoader(fetcher, nil)

	task, err := loader.Start(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(fetcher.block)
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not complete")
	}
}

func TestLoader_RefreshOutlivesRequestContext(t *testing.T) {
	fetcher := &mockFetcher{body: testFeed, block: make(chan struct{})}
	loader, _ := newTestLoader(fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, loader.Refresh(ctx))
	cancel()
	close(fetcher.block)

	require.Eventually(t, func() bool {
		latest, ok := loader.Latest()
		return ok && len(latest.Earthquakes) == 2
	}, time.Second, 5*time.Millisecond)
}
