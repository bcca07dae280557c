package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// NominatimConfig configures a Nominatim client
type NominatimConfig struct {
	BaseURL     string
	ProxyPrefix string // prepended verbatim, e.g. "https://corsproxy.io/?"
	UserAgent   string
	Timeout     time.Duration
	RatePerSec  float64 // public Nominatim allows one request per second
}

// Nominatim implements Reverser against the OpenStreetMap Nominatim API.
// Each call is a single attempt; callers decide on fallbacks.
type Nominatim struct {
	client      *resty.Client
	baseURL     string
	proxyPrefix string
	limiter     *rate.Limiter
	group       singleflight.Group
	metrics     *observability.Metrics
}

// NewNominatim creates a Nominatim reverse geocoding client
func NewNominatim(cfg NominatimConfig, metrics *observability.Metrics) *Nominatim {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}

	client := resty.New().SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Nominatim{
		client:      client,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		proxyPrefix: cfg.ProxyPrefix,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		metrics:     metrics,
	}
}

// Reverse looks up the display name for a coordinate. Concurrent lookups of the
// same coordinate share one upstream request, bounded by the client timeout
// rather than by any one caller's context.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	key := FormatCoordinates(lat, lon)
	shared := context.WithoutCancel(ctx)
	ch := n.group.DoChan(key, func() (interface{}, error) {
		return n.reverse(shared, lat, lon)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return res.Val.(Result), nil
	}
}

func (n *Nominatim) reverse(ctx context.Context, lat, lon float64) (Result, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("reverse geocode rate limit: %w", err)
	}

	start := time.Now()
	var body reverseResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&body).
		Get(n.reverseURL(lat, lon))
	if err != nil {
		n.metrics.Geocode("error", time.Since(start))
		return Result{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	if resp.IsError() {
		n.metrics.Geocode("error", time.Since(start))
		return Result{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if body.DisplayName == "" {
		n.metrics.Geocode("empty", time.Since(start))
		if body.Error != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrNoResult, body.Error)
		}
		return Result{}, ErrNoResult
	}

	n.metrics.Geocode("success", time.Since(start))
	return Result{DisplayName: body.DisplayName, Lat: lat, Lon: lon}, nil
}

// reverseURL builds the request URL. The proxy prefix takes the raw target URL.
func (n *Nominatim) reverseURL(lat, lon float64) string {
	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"json"},
	}
	return n.proxyPrefix + n.baseURL + "/reverse?" + params.Encode()
}

// Nominatim API response; "error" is set with a 200 status for unknown places.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}
