package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "feed-token",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClient_GameweekStatsDecodesPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gameweeks/3/stats" || r.Header.Get("Authorization") != "Bearer feed-token" {
			t.Errorf("unexpected request: path=%s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"player_id":"p1","gameweek":3,"minutes":90,"points":8},
			{"player_id":"p2","minutes":0,"points":0},
			{"player_id":"p3","gameweek":2,"minutes":90,"points":5},
			{"player_id":"","gameweek":3,"minutes":90,"points":1}
		]}`))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, 0, resilience.CircuitBreakerConfig{})
	lines, err := client.GameweekStats(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, []playerstats.StatLine{
		{PlayerID: "p1", Gameweek: 3, Minutes: 90, Points: 8},
		{PlayerID: "p2", Gameweek: 3, Minutes: 0, Points: 0},
	}, lines)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"player_id":"p1","gameweek":1,"minutes":45,"points":2}]}`))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, 2, resilience.CircuitBreakerConfig{})
	lines, err := client.GameweekStats(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.EqualValues(t, 3, calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown gameweek"}`))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, 3, resilience.CircuitBreakerConfig{})
	_, err := client.GameweekStats(t.Context(), 9)
	require.Error(t, err)
	require.False(t, isTransient(err))
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	_, err := client.GameweekStats(t.Context(), 1)
	require.Error(t, err)
	require.True(t, isTransient(err))

	_, err = client.GameweekStats(t.Context(), 1)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "", 0, resilience.CircuitBreakerConfig{})
	_, err := client.GameweekStats(t.Context(), 1)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
}

type countingFeed struct {
	mu    sync.Mutex
	calls map[int]int
	err   error
	delay time.Duration
	// published overrides the default single line per gameweek when set.
	published map[int][]playerstats.StatLine
}

func (f *countingFeed) GameweekStats(_ context.Context, gameweek int) ([]playerstats.StatLine, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[int]int)
	}
	f.calls[gameweek]++
	if f.err != nil {
		return nil, f.err
	}
	if f.published != nil {
		return append([]playerstats.StatLine(nil), f.published[gameweek]...), nil
	}
	return []playerstats.StatLine{{PlayerID: "p1", Gameweek: gameweek, Minutes: 90, Points: gameweek}}, nil
}

func (f *countingFeed) publish(gameweek int, lines ...playerstats.StatLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[int][]playerstats.StatLine)
	}
	f.published[gameweek] = lines
}

func (f *countingFeed) count(gameweek int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[gameweek]
}

func TestCachedFeed_LoadsOncePerGameweek(t *testing.T) {
	t.Parallel()

	next := &countingFeed{delay: 10 * time.Millisecond}
	feed := NewCachedFeed(next, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lines, err := feed.GameweekStats(t.Context(), 4)
			if err != nil || len(lines) != 1 || lines[0].Points != 4 {
				t.Errorf("unexpected result: lines=%v err=%v", lines, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, next.count(4))

	feed.Invalidate(t.Context(), 4)
	_, err := feed.GameweekStats(t.Context(), 4)
	require.NoError(t, err)
	require.Equal(t, 2, next.count(4))
}

func TestCachedFeed_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingFeed{err: errors.New("upstream down")}
	feed := NewCachedFeed(next, time.Minute)

	_, err := feed.GameweekStats(t.Context(), 2)
	require.Error(t, err)
	_, err = feed.GameweekStats(t.Context(), 2)
	require.Error(t, err)
	require.Equal(t, 2, next.count(2))
}

func TestCachedFeed_EmptyLoadIsNotCached(t *testing.T) {
	t.Parallel()

	next := &countingFeed{}
	next.publish(3)
	feed := NewCachedFeed(next, time.Minute)

	lines, err := feed.GameweekStats(t.Context(), 3)
	require.NoError(t, err)
	require.Empty(t, lines)

	next.publish(3, playerstats.StatLine{PlayerID: "p7", Gameweek: 3, Minutes: 90, Points: 5})
	lines, err = feed.GameweekStats(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, []playerstats.StatLine{{PlayerID: "p7", Gameweek: 3, Minutes: 90, Points: 5}}, lines)

	_, err = feed.GameweekStats(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, 2, next.count(3))
}

func TestCachedFeed_EmptyFileFeedPicksUpLateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	feed := NewCachedFeed(NewFileFeed(dir), time.Minute)

	lines, err := feed.GameweekStats(t.Context(), 8)
	require.NoError(t, err)
	require.Empty(t, lines)

	payload := `{"data":[{"player_id":"p1","minutes":90,"points":3}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gameweek-8.json"), []byte(payload), 0o600))

	lines, err = feed.GameweekStats(t.Context(), 8)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestFileFeed_ReadsGameweekFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := `{"data":[{"player_id":"p1","minutes":90,"points":7},{"player_id":"p2","minutes":-1,"points":0}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gameweek-5.json"), []byte(payload), 0o600))

	feed := NewFileFeed(dir)
	lines, err := feed.GameweekStats(t.Context(), 5)
	require.NoError(t, err)
	require.Equal(t, []playerstats.StatLine{
		{PlayerID: "p1", Gameweek: 5, Minutes: 90, Points: 7},
		{PlayerID: "p2", Gameweek: 5, Minutes: 0, Points: 0},
	}, lines)

	missing, err := feed.GameweekStats(t.Context(), 6)
	require.NoError(t, err)
	require.Empty(t, missing)
}
