// Package rainfall looks up long-term annual precipitation (mm) for a
// coordinate from an ArcGIS ImageServer identify endpoint. Lookups are
// best-effort: a failure or a raster no-data cell never fails the
// caller's prescription, it only disables the leaching correction.
package rainfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/terralytics/limeplan/internal/logger"
)

// ErrNoData is returned when the raster has no value at the requested
// coordinate, typically a point outside the dataset's coverage.
var ErrNoData = errors.New("rainfall: no data at location")

// Service resolves annual rainfall in mm for a WGS84 coordinate.
type Service interface {
	Annual(ctx context.Context, lon, lat float64) (float64, error)
}

type cacheKey struct {
	lon, lat float64
}

type cacheEntry struct {
	mm    float64
	found bool
}

// Client queries the identify endpoint with a per-call timeout and a
// circuit breaker, and memoizes results per rounded coordinate. Misses
// are cached too so a field outside coverage is only fetched once.
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

// NewClient builds a rainfall client for the given identify endpoint
// URL. The breaker opens after three consecutive transport failures and
// probes again after 30 seconds; no-data responses do not count as
// failures.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "rainfall-identify",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.Warn("rainfall circuit breaker state change", map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			}
		},
	}

	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
		cache:   make(map[cacheKey]cacheEntry),
	}
}

// Annual returns the annual rainfall in mm at (lon, lat). Coordinates
// are rounded to two decimals before lookup so nearby samples share a
// cache entry and a raster cell.
func (c *Client) Annual(ctx context.Context, lon, lat float64) (float64, error) {
	key := cacheKey{lon: round2(lon), lat: round2(lat)}

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok {
		c.mu.Unlock()
		if !entry.found {
			return 0, ErrNoData
		}
		return entry.mm, nil
	}
	c.mu.Unlock()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		mm, err := c.identify(ctx, key.lon, key.lat)
		if err != nil {
			return nil, err
		}
		return mm, nil
	})
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.store(key, cacheEntry{found: false})
			return 0, ErrNoData
		}
		return 0, err
	}

	mm := result.(float64)
	c.store(key, cacheEntry{mm: mm, found: true})
	return mm, nil
}

func (c *Client) store(key cacheKey, entry cacheEntry) {
	c.mu.Lock()
	c.cache[key] = entry
	c.mu.Unlock()
}

func (c *Client) identify(ctx context.Context, lon, lat float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	geometry, err := json.Marshal(map[string]interface{}{
		"x":                lon,
		"y":                lat,
		"spatialReference": map[string]int{"wkid": 4326},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode geometry: %w", err)
	}

	params := url.Values{}
	params.Set("geometry", string(geometry))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("returnGeometry", "false")
	params.Set("f", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build rainfall request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rainfall request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("rainfall service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Value interface{} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode rainfall response: %w", err)
	}

	switch v := payload.Value.(type) {
	case string:
		if v == "NoData" {
			return 0, ErrNoData
		}
		mm, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected rainfall value %q", v)
		}
		return mm, nil
	case float64:
		return v, nil
	default:
		return 0, ErrNoData
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
