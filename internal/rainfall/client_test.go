package rainfall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralytics/limeplan/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, logger.New("test")), srv, &calls
}

func TestClient_Annual(t *testing.T) {
	client, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "esriGeometryPoint", r.URL.Query().Get("geometryType"))
		assert.Equal(t, "json", r.URL.Query().Get("f"))

		var geometry struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("geometry")), &geometry))
		// Coordinates must be rounded to two decimals before lookup.
		assert.Equal(t, 9.12, geometry.X)
		assert.Equal(t, 48.35, geometry.Y)

		json.NewEncoder(w).Encode(map[string]string{"value": "812.5"})
	})

	mm, err := client.Annual(context.Background(), 9.1234, 48.3456)
	require.NoError(t, err)
	assert.Equal(t, 812.5, mm)
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Annual_NumericValue(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"value": 640})
	})

	mm, err := client.Annual(context.Background(), 9.0, 48.0)
	require.NoError(t, err)
	assert.Equal(t, 640.0, mm)
}

func TestClient_Annual_NoData(t *testing.T) {
	client, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"value": "NoData"})
	})

	_, err := client.Annual(context.Background(), 9.0, 48.0)
	assert.ErrorIs(t, err, ErrNoData)

	// Misses are cached too.
	_, err = client.Annual(context.Background(), 9.0, 48.0)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Annual_CachesByRoundedCoordinate(t *testing.T) {
	client, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"value": "700"})
	})

	ctx := context.Background()
	for _, lon := range []float64{9.1201, 9.1204, 9.1195} {
		mm, err := client.Annual(ctx, lon, 48.35)
		require.NoError(t, err)
		assert.Equal(t, 700.0, mm)
	}
	// All three longitudes round to 9.12 and share one fetch.
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Annual_ServerError(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Annual(context.Background(), 9.0, 48.0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestClient_Annual_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client, _, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ctx := context.Background()
	// Distinct coordinates bypass the cache; after three consecutive
	// failures the breaker rejects further calls without hitting the
	// server.
	for i := 0; i < 5; i++ {
		_, err := client.Annual(ctx, 9.0+float64(i), 48.0)
		assert.Error(t, err)
	}
	assert.Equal(t, int64(3), calls.Load())
}
