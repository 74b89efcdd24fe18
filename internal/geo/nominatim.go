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

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// Geocoder interroge Nominatim pour retrouver le pays d'une coordonnée.
// Les appels sont limités (1 req/s par défaut, politique d'usage d'OSM) et mis en cache.
type Geocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	cache     *lru.Cache
	retry     utils.RetryOptions
}

type nominatimResponse struct {
	Address struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func NewGeocoder(cfg config.GeoConfig, client *http.Client) (*Geocoder, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Geocoder{
		client:    client,
		baseURL:   strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		cache:     cache,
		retry:     utils.OutboundRetryOptions(),
	}, nil
}

func cacheKey(lat, lon float64) string {
	// ~100 m, largement assez pour un pays
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}

// CountryCode retourne le code pays en minuscules, "" si Nominatim n'en donne pas
func (g *Geocoder) CountryCode(ctx context.Context, lat, lon float64) (string, error) {
	key := cacheKey(lat, lon)
	if v, ok := g.cache.Get(key); ok {
		lookups.WithLabelValues("nominatim", "hit").Inc()
		return v.(string), nil
	}

	code, err := utils.WithRetry(ctx, func() (string, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", utils.Permanent(err)
		}
		return g.reverse(ctx, lat, lon)
	}, g.retry)
	if err != nil {
		lookups.WithLabelValues("nominatim", "error").Inc()
		return "", err
	}

	lookups.WithLabelValues("nominatim", "miss").Inc()
	g.cache.Add(key, code)
	return code, nil
}

func (g *Geocoder) reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "3")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", utils.Permanent(err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", utils.Permanent(fmt.Errorf("nominatim: status %d", resp.StatusCode))
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", utils.Permanent(fmt.Errorf("nominatim: decode: %w", err))
	}
	return strings.ToLower(body.Address.CountryCode), nil
}

// Region affine la région par géocodage inverse. ok vaut false si le pays est inconnu.
func (g *Geocoder) Region(ctx context.Context, lat, lon float64) (model.Region, bool, error) {
	code, err := g.CountryCode(ctx, lat, lon)
	if err != nil || code == "" {
		return "", false, err
	}
	return RegionFromCountry(code), true, nil
}
