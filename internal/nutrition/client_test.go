package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, cacheSize int) *Client {
	t.Helper()

	logger := zerolog.Nop()

	client, err := NewClient(Config{
		BaseURL:   baseURL,
		Timeout:   time.Second,
		CacheSize: cacheSize,
	}, &logger)
	require.NoError(t, err)

	return client
}

func TestLookup_CachesByNormalizedLabel(t *testing.T) {
	var hits atomic.Int64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		require.Equal(t, lookupPath, r.URL.Path)
		require.Equal(t, "apple", r.URL.Query().Get(queryParamFood))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"food": "apple", "caloriesPer100g": 52}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, 8)

	info, ok := client.Lookup(context.Background(), " Apple ")
	require.True(t, ok)
	require.Equal(t, "apple", info.Label)
	require.InDelta(t, 52.0, info.CaloriesPer100g, 1e-9)

	_, ok = client.Lookup(context.Background(), "APPLE")
	require.True(t, ok)
	require.EqualValues(t, 1, hits.Load(), "second lookup must come from cache")
}

func TestLookup_BoundedCacheEvicts(t *testing.T) {
	var hits atomic.Int64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(fmt.Appendf(nil, `{"food": %q, "caloriesPer100g": 10}`, r.URL.Query().Get(queryParamFood)))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, 2)

	for _, food := range []string{"apple", "banana", "rice"} {
		_, ok := client.Lookup(context.Background(), food)
		require.True(t, ok)
	}

	// apple was evicted by rice in a capacity-2 cache.
	_, ok := client.Lookup(context.Background(), "apple")
	require.True(t, ok)
	require.EqualValues(t, 4, hits.Load())
}

func TestLookup_FailureIsAMissNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, 8)

	_, ok := client.Lookup(context.Background(), "apple")
	require.False(t, ok)
}

func TestLookup_BlankLabel(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0", 8)

	_, ok := client.Lookup(context.Background(), "   ")
	require.False(t, ok)
}
