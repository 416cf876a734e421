package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr             string
	DatabaseURL      string
	JWTSecret        string
	CORSAllowOrigins string

	CatalogBaseURL      string
	CatalogAPIToken     string
	CatalogTimeout      time.Duration
	CatalogRateLimitRPS float64

	ImageProbeTimeout     time.Duration
	ImageProbeConcurrency int
	ImagePlaceholderURL   string

	ProductCacheTTL time.Duration

	FavoritesDriver     string
	FavoritesSQLitePath string

	LogLevel  string
	LogFormat string

	LabelRulesFile string
}

const (
	FavoritesMemory   = "memory"
	FavoritesPostgres = "postgres"
	FavoritesSQLite   = "sqlite"
)

// Load reads a .env file when present, then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() Config {
	cfg := Config{
		Addr:             getEnv("ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),

		CatalogBaseURL:      getEnv("CATALOG_BASE_URL", "https://kassal.app/api/v1/products"),
		CatalogAPIToken:     getEnv("CATALOG_API_TOKEN", ""),
		CatalogTimeout:      getEnvDuration("CATALOG_TIMEOUT", 10*time.Second),
		CatalogRateLimitRPS: getEnvFloat("CATALOG_RATE_LIMIT_RPS", 1),

		ImageProbeTimeout:     getEnvDuration("IMAGE_PROBE_TIMEOUT", 3*time.Second),
		ImageProbeConcurrency: getEnvInt("IMAGE_PROBE_CONCURRENCY", 4),
		ImagePlaceholderURL:   getEnv("IMAGE_PLACEHOLDER_URL", "/static/img/product-placeholder.png"),

		ProductCacheTTL: getEnvDuration("PRODUCT_CACHE_TTL", 6*time.Hour),

		FavoritesDriver:     strings.ToLower(getEnv("FAVORITES_DRIVER", "")),
		FavoritesSQLitePath: getEnv("FAVORITES_SQLITE_PATH", "data/favorites.db"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		LabelRulesFile: getEnv("NUTRITION_RULES_FILE", ""),
	}

	// favorites follow the main store unless a driver is chosen
	if cfg.FavoritesDriver == "" {
		cfg.FavoritesDriver = FavoritesMemory
		if cfg.DatabaseURL != "" {
			cfg.FavoritesDriver = FavoritesPostgres
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil && v >= 0 {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
