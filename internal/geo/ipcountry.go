package geo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	lru "github.com/hashicorp/golang-lru"
)

// IPLocator résout le pays d'une IP via ipapi.co (texte brut, ex. "KR")
type IPLocator struct {
	client       *http.Client
	baseURL      string
	userAgent    string
	localCountry string
	cache        *lru.Cache
}

func NewIPLocator(cfg config.GeoConfig, client *http.Client) (*IPLocator, error) {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create ip cache: %w", err)
	}
	local := strings.ToUpper(cfg.DefaultCountry)
	if local == "" {
		local = "KR"
	}
	return &IPLocator{
		client:       client,
		baseURL:      strings.TrimRight(cfg.IPLookupURL, "/"),
		userAgent:    cfg.UserAgent,
		localCountry: local,
		cache:        cache,
	}, nil
}

// isLocal couvre loopback, réseaux privés et "localhost"
func isLocal(ip string) bool {
	if ip == "localhost" {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified()
}

// Country retourne le code pays en majuscules. Les IP locales sont considérées comme le pays par défaut.
func (l *IPLocator) Country(ctx context.Context, ip string) (string, error) {
	if ip == "" {
		return "", fmt.Errorf("empty ip")
	}
	if isLocal(ip) {
		return l.localCountry, nil
	}
	if v, ok := l.cache.Get(ip); ok {
		lookups.WithLabelValues("ipapi", "hit").Inc()
		return v.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/country/", l.baseURL, ip), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		lookups.WithLabelValues("ipapi", "error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", err
	}
	country := strings.ToUpper(strings.TrimSpace(string(raw)))
	if resp.StatusCode != http.StatusOK || !isCountryCode(country) {
		lookups.WithLabelValues("ipapi", "error").Inc()
		return "", fmt.Errorf("ip lookup %s: status %d, body %q", ip, resp.StatusCode, country)
	}

	lookups.WithLabelValues("ipapi", "miss").Inc()
	l.cache.Add(ip, country)
	return country, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Language déduit la langue d'affichage de l'IP. En cas d'échec : anglais.
func (l *IPLocator) Language(ctx context.Context, ip string) string {
	country, err := l.Country(ctx, ip)
	if err != nil {
		return LanguageFromCountry("")
	}
	return LanguageFromCountry(country)
}
