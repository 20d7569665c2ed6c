package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meepleserver/apperr"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Geocoder converts a free-text address into a coordinate. Zero results map
// to apperr.ErrNotFound, anything transport- or parse-shaped to
// apperr.ErrProviderFailure, so callers can tell "check your address" from
// "try again later". No retries here.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

// HTTPGeocoder talks to a Nominatim-compatible search endpoint. Results are
// cached in redis by normalized address; cache trouble is logged, never
// surfaced.
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client
	RDB     *redis.Client
	Logger  *zap.Logger
}

const geocodeCacheTTL = 24 * time.Hour

func NewHTTPGeocoder(baseURL string, rdb *redis.Client, logger *zap.Logger) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		RDB:     rdb,
		Logger:  logger,
	}
}

func geocodeCacheKey(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	if strings.TrimSpace(address) == "" {
		return Point{}, fmt.Errorf("%w: empty address", apperr.ErrNotFound)
	}

	cacheKey := geocodeCacheKey(address)
	if g.RDB != nil {
		cached, err := g.RDB.Get(ctx, cacheKey).Result()
		if err == nil {
			var p Point
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return p, nil
			}
		} else if err != redis.Nil {
			g.Logger.Warn("geocode cache read failed", zap.Error(err))
		}
	}

	reqURL := fmt.Sprintf("%s?format=json&limit=1&q=%s", g.BaseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Point{}, providerErr(err)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return Point{}, providerErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Point{}, providerErrf("geocoder status %d", resp.StatusCode)
	}

	var parsed []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Point{}, providerErr(err)
	}
	if len(parsed) == 0 {
		return Point{}, fmt.Errorf("%w: no match for address", apperr.ErrNotFound)
	}

	lat, latErr := strconv.ParseFloat(parsed[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(parsed[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return Point{}, providerErrf("malformed coordinates")
	}
	p := Point{Lat: lat, Lng: lng}

	if g.RDB != nil {
		if encoded, err := json.Marshal(p); err == nil {
			if err := g.RDB.Set(ctx, cacheKey, encoded, geocodeCacheTTL).Err(); err != nil {
				g.Logger.Warn("geocode cache write failed", zap.Error(err))
			}
		}
	}

	return p, nil
}
