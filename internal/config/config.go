package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config est la configuration racine, lue depuis config.yaml
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Redis      RedisConfig      `yaml:"redis"`
	DeepL      DeepLConfig      `yaml:"deepl"`
	Geo        GeoConfig        `yaml:"geo"`
	Guest      GuestConfig      `yaml:"guest"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Background BackgroundConfig `yaml:"background"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configure le serveur HTTP.
// TrustedProxies liste les proxys (CIDR ou IP) dont X-Forwarded-For est lu.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	URL            string   `yaml:"url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ShutdownGrace  string   `yaml:"shutdown_grace"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// ParseShutdownGrace retourne le délai d'arrêt propre
func (s ServerConfig) ParseShutdownGrace() time.Duration {
	d, err := time.ParseDuration(s.ShutdownGrace)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// DatabaseConfig configure le pool PostgreSQL
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// DSN construit la chaîne de connexion postgres
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
	if d.SSLMode != "" {
		dsn += "?sslmode=" + d.SSLMode
	}
	return dsn
}

// CloudinaryConfig contient les identifiants de l'hébergeur d'images
type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

// Enabled indique si tous les identifiants sont présents
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// RankingConfig configure les poids du score et le recalcul des rangs
type RankingConfig struct {
	Weights         map[string]int `yaml:"weights"`
	RefreshMode     string         `yaml:"refresh_mode"` // "eager" ou "scheduled"
	RefreshInterval string         `yaml:"refresh_interval"`
	Timezone        string         `yaml:"timezone"`
	ListLimit       int            `yaml:"list_limit"`
}

// ParseRefreshInterval retourne l'intervalle du tri planifié
func (r RankingConfig) ParseRefreshInterval() time.Duration {
	d, err := time.ParseDuration(r.RefreshInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// Location charge le fuseau du classement, UTC par défaut
func (r RankingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisConfig configure le cache de traduction (optionnel)
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	TTL      string `yaml:"ttl"`
}

// ParseTTL retourne la durée de vie d'une entrée
func (r RedisConfig) ParseTTL() time.Duration {
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// DeepLConfig configure le fournisseur de traduction
type DeepLConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// GeoConfig configure le géocodage inverse et la localisation IP
type GeoConfig struct {
	NominatimURL   string  `yaml:"nominatim_url"`
	UserAgent      string  `yaml:"user_agent"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	IPLookupURL    string  `yaml:"ip_lookup_url"`
	CacheSize      int     `yaml:"cache_size"`
	RefineDelay    string  `yaml:"refine_delay"`
	DefaultCountry string  `yaml:"default_country"`
}

// ParseRefineDelay retourne le délai avant l'affinage asynchrone de la région
func (g GeoConfig) ParseRefineDelay() time.Duration {
	d, err := time.ParseDuration(g.RefineDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GuestConfig configure le cookie invité signé
type GuestConfig struct {
	HashKey  string `yaml:"hash_key"`
	BlockKey string `yaml:"block_key"`
	MaxItems int    `yaml:"max_items"`
	Secure   bool   `yaml:"secure"`
}

// RateLimitConfig configure la limite d'écriture par IP
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// BackgroundConfig borne les tâches de fond
type BackgroundConfig struct {
	MaxGoroutines int `yaml:"max_goroutines"`
}

// LoggingConfig configure le logger console
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default retourne la configuration par défaut
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			URL:            "http://localhost:8080",
			AllowedOrigins: []string{"*"},
			ShutdownGrace:  "10s",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "pikmin",
			MaxConns: 10,
		},
		Cloudinary: CloudinaryConfig{Folder: "pikmin"},
		Ranking: RankingConfig{
			Weights: map[string]int{
				"approved_post": 10,
				"like_received": 5,
				"farming_like":  10,
				"copy_received": 2,
			},
			RefreshMode:     "scheduled",
			RefreshInterval: "1m",
			Timezone:        "Asia/Seoul",
			ListLimit:       100,
		},
		Redis: RedisConfig{TTL: "24h"},
		DeepL: DeepLConfig{BaseURL: "https://api-free.deepl.com"},
		Geo: GeoConfig{
			NominatimURL:   "https://nominatim.openstreetmap.org",
			UserAgent:      "PikminDiary/1.0",
			RequestsPerSec: 1,
			IPLookupURL:    "https://ipapi.co",
			CacheSize:      1024,
			RefineDelay:    "2s",
			DefaultCountry: "KR",
		},
		Guest: GuestConfig{MaxItems: 50},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   20,
		},
		Background: BackgroundConfig{MaxGoroutines: 8},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load lit le fichier YAML puis applique les variables d'environnement
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejette les valeurs inutilisables
func (c *Config) Validate() error {
	switch c.Ranking.RefreshMode {
	case "eager", "scheduled":
	default:
		return fmt.Errorf("invalid ranking.refresh_mode %q (want eager or scheduled)", c.Ranking.RefreshMode)
	}
	if c.Ranking.ListLimit <= 0 {
		return fmt.Errorf("ranking.list_limit must be positive")
	}
	if c.Guest.MaxItems <= 0 {
		return fmt.Errorf("guest.max_items must be positive")
	}
	for _, p := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("invalid server.trusted_proxies entry %q", p)
		}
	}
	return nil
}

// applyEnvOverrides surcharge la config avec les variables d'environnement
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("APP_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("CLOUDINARY_CLOUD_NAME"); v != "" {
		cfg.Cloudinary.CloudName = v
	}
	if v := os.Getenv("CLOUDINARY_API_KEY"); v != "" {
		cfg.Cloudinary.APIKey = v
	}
	if v := os.Getenv("CLOUDINARY_API_SECRET"); v != "" {
		cfg.Cloudinary.APISecret = v
	}
	if v := os.Getenv("DEEPL_API_KEY"); v != "" {
		cfg.DeepL.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GUEST_HASH_KEY"); v != "" {
		cfg.Guest.HashKey = v
	}
	if v := os.Getenv("GUEST_BLOCK_KEY"); v != "" {
		cfg.Guest.BlockKey = v
	}
	if v := os.Getenv("TZ_NAME"); v != "" {
		cfg.Ranking.Timezone = v
	}
	if v := os.Getenv("RANKING_REFRESH_MODE"); v != "" {
		cfg.Ranking.RefreshMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.Server.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Server.TrustedProxies = append(cfg.Server.TrustedProxies, p)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = rps
		}
	}
}
