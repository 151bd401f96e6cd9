// Package nutrition looks up per-label nutrition facts used to annotate
// evaluation summaries. Lookups go through a fixed-capacity LRU cache so a
// long-running process never grows without bound, and every failure
// degrades to "no nutrition info".
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/food-calorie-app/audio-eval/internal/labels"
)

const (
	lookupPath       = "/nutrition"
	queryParamFood   = "food"
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 256
)

var errLookupStatus = errors.New("nutrition lookup status")

// Info holds the facts returned for one food label.
type Info struct {
	Label           string  `json:"food"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
}

// Config configures the nutrition client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
}

// Client queries the nutrition API, caching results by normalized label.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache[string, Info]
	logger     *zerolog.Logger
}

// NewClient creates a Client with a bounded LRU cache.
func NewClient(cfg Config, logger *zerolog.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	cache, err := lru.New[string, Info](size)
	if err != nil {
		return nil, fmt.Errorf("create nutrition cache: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:  cache,
		logger: logger,
	}, nil
}

// Lookup returns nutrition facts for label, serving repeats from the
// cache. A failed remote lookup is logged and reported as a miss; it is
// never cached and never fails the caller.
func (c *Client) Lookup(ctx context.Context, label string) (Info, bool) {
	key := labels.Normalize(label)
	if key == "" {
		return Info{}, false
	}

	if info, ok := c.cache.Get(key); ok {
		return info, true
	}

	info, err := c.fetch(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("food", key).Msg("nutrition lookup failed")

		return Info{}, false
	}

	c.cache.Add(key, info)

	return info, true
}

func (c *Client) fetch(ctx context.Context, food string) (Info, error) {
	endpoint := fmt.Sprintf("%s%s?%s=%s", c.baseURL, lookupPath, queryParamFood, url.QueryEscape(food))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Info{}, fmt.Errorf("build nutrition request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("nutrition request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("%w: %d", errLookupStatus, resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("decode nutrition response: %w", err)
	}

	if info.Label == "" {
		info.Label = food
	}

	return info, nil
}
