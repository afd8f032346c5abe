package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-aggregator/internal/adapter"
)

const (
	leaguesJSON  = `[{"id":"epl","name":"Premier League","country":"England"},{"id":"","name":"skip"}]`
	fixturesJSON = `[{"id":"ev-1","home":"Arsenal","away":"Chelsea","kickoff":"2025-03-10T19:45:00+02:00","league_id":"epl"}]`
	oddsJSON     = `[{"fixture_id":"ev-1","group":"1X2","outcome":"1","coefficient":1.85},{"fixture_id":"ev-1","group":"1X2","outcome":"X","coefficient":"3.40"}]`
)

func feedHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/leagues", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(leaguesJSON)) })
	mux.HandleFunc("/fixtures", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(fixturesJSON)) })
	mux.HandleFunc("/odds", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(oddsJSON)) })
	return mux
}

func fastOpts(extra ...Option) []Option {
	return append([]Option{
		WithTimeout(2 * time.Second),
		WithRetryDelay(time.Millisecond),
		WithMaxDelay(5 * time.Millisecond),
	}, extra...)
}

func TestClient_FetchAll(t *testing.T) {
	srv := httptest.NewServer(feedHandler())
	defer srv.Close()

	c, err := New("betking", srv.URL+"/", fastOpts()...)
	require.NoError(t, err)
	assert.Equal(t, "betking", c.Name())
	ctx := context.Background()

	leagues, err := c.FetchLeagues(ctx)
	require.NoError(t, err)
	require.Len(t, leagues, 1)
	assert.Equal(t, "England", leagues[0].SourceCountryName)

	fixtures, err := c.FetchFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC), fixtures[0].KickoffUTC)
	assert.Equal(t, time.UTC, fixtures[0].KickoffUTC.Location())

	odds, err := c.FetchOdds(ctx)
	require.NoError(t, err)
	require.Len(t, odds, 2)
	assert.True(t, odds[0].Coefficient.Equal(decimal.RequireFromString("1.85")))
	assert.True(t, odds[1].Coefficient.Equal(decimal.RequireFromString("3.4")))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		feedHandler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, err := New("betking", srv.URL, fastOpts(WithMaxRetries(2))...)
	require.NoError(t, err)

	odds, err := c.FetchOdds(context.Background())
	require.NoError(t, err)
	assert.Len(t, odds, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New("betking", srv.URL, fastOpts(WithMaxRetries(3))...)
	require.NoError(t, err)

	_, err = c.FetchOdds(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, adapter.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_NegativeRetriesMakesOneAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New("betking", srv.URL, fastOpts(WithMaxRetries(-1))...)
	require.NoError(t, err)

	_, err = c.FetchOdds(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "502")
	assert.NotContains(t, err.Error(), "%!w")
}

func TestClient_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(feedHandler())
	deadURL := srv.URL
	srv.Close()

	c, err := New("betking", deadURL, fastOpts(WithMaxRetries(1))...)
	require.NoError(t, err)

	_, err = c.FetchFixtures(context.Background())
	require.ErrorIs(t, err, adapter.ErrNetwork)

	var ne *adapter.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, deadURL+"/fixtures", ne.URL)
}

func TestClient_RotatesProxyOnConnectionRefused(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadProxy := dead.URL
	dead.Close()

	// Plain-HTTP proxy requests carry the absolute URL; the mux routes on path.
	var proxied atomic.Int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Add(1)
		feedHandler().ServeHTTP(w, r)
	}))
	defer good.Close()

	c, err := New("betking", "http://feed.example.invalid",
		fastOpts(WithMaxRetries(2), WithProxies(deadProxy, good.URL))...)
	require.NoError(t, err)

	leagues, err := c.FetchLeagues(context.Background())
	require.NoError(t, err)
	assert.Len(t, leagues, 1)
	assert.Equal(t, int32(1), proxied.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New("betking", srv.URL, WithRetryDelay(time.Hour), WithMaxRetries(3))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.FetchOdds(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("betking", "not a url")
	assert.Error(t, err)
}
