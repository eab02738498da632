package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

const unknownMarker = "unknown"

type Options struct {
	BaseURL      string
	UserAgent    string
	RegionSuffix string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

// Client resolves substation names through a Nominatim compatible search API.
// Hits and misses are cached; transport failures are not.
type Client struct {
	httpClient *http.Client
	options    Options
	cache      ports.Cache
}

var _ ports.Geocoder = (*Client)(nil)

func NewClient(options Options, cache ports.Cache) *Client {
	if options.Timeout <= 0 {
		options.Timeout = 5 * time.Second
	}
	options.BaseURL = strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	return &Client{
		httpClient: &http.Client{Timeout: options.Timeout},
		options:    options,
		cache:      cache,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, address string) (ports.Coordinates, bool) {
	query := strings.TrimSpace(address)
	if ctx == nil || query == "" {
		return ports.Coordinates{}, false
	}
	if suffix := strings.TrimSpace(c.options.RegionSuffix); suffix != "" {
		query = query + ", " + suffix
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.geocode"), slog.String("query", query))
	cacheKey := "geocode:" + strings.ToLower(query)

	if c.cache != nil {
		if value, found, err := c.cache.Get(ctx, cacheKey); err == nil && found {
			return decodeCached(value)
		}
	}

	coords, ok, err := c.search(ctx, query)
	if err != nil {
		logging.Warn(logCtx, "geocode lookup failed", slog.Any("err", errs.Loggable(err)))
		return ports.Coordinates{}, false
	}

	if c.cache != nil {
		value := unknownMarker
		if ok {
			value = encodeCached(coords)
		}
		if err := c.cache.Set(ctx, cacheKey, value, c.options.CacheTTL); err != nil {
			logging.Warn(logCtx, "cache geocode result failed", slog.Any("err", errs.Loggable(err)))
		}
	}
	return coords, ok
}

func (c *Client) search(ctx context.Context, query string) (ports.Coordinates, bool, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.options.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return ports.Coordinates{}, false, errs.Wrap(err, "build geocode request")
	}
	if ua := strings.TrimSpace(c.options.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Coordinates{}, false, errs.Wrap(err, "call geocode api")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return ports.Coordinates{}, false, fmt.Errorf("geocode api status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return ports.Coordinates{}, false, errs.Wrap(err, "decode geocode response")
	}
	if len(results) == 0 {
		return ports.Coordinates{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return ports.Coordinates{}, false, fmt.Errorf("geocode api returned invalid coordinates %q,%q", results[0].Lat, results[0].Lon)
	}
	return ports.Coordinates{Latitude: lat, Longitude: lon}, true, nil
}

func encodeCached(coords ports.Coordinates) string {
	return strconv.FormatFloat(coords.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(coords.Longitude, 'f', -1, 64)
}

func decodeCached(value string) (ports.Coordinates, bool) {
	if value == unknownMarker {
		return ports.Coordinates{}, false
	}
	latRaw, lonRaw, ok := strings.Cut(value, ",")
	if !ok {
		return ports.Coordinates{}, false
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr != nil || lonErr != nil {
		return ports.Coordinates{}, false
	}
	return ports.Coordinates{Latitude: lat, Longitude: lon}, true
}
