package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FAVORITES_DRIVER", "")
	t.Setenv("CATALOG_TIMEOUT", "")

	cfg := FromEnv()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.CatalogTimeout != 10*time.Second {
		t.Fatalf("expected 10s catalog timeout, got %v", cfg.CatalogTimeout)
	}
	if cfg.ImageProbeTimeout != 3*time.Second || cfg.ImageProbeConcurrency != 4 {
		t.Fatalf("unexpected probe defaults %v %d", cfg.ImageProbeTimeout, cfg.ImageProbeConcurrency)
	}
	if cfg.FavoritesDriver != FavoritesMemory {
		t.Fatalf("expected memory favorites without a database, got %q", cfg.FavoritesDriver)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/grocery")
	t.Setenv("FAVORITES_DRIVER", "")
	t.Setenv("CATALOG_TIMEOUT", "2")
	t.Setenv("IMAGE_PROBE_TIMEOUT", "750ms")
	t.Setenv("IMAGE_PROBE_CONCURRENCY", "not-a-number")
	t.Setenv("CATALOG_RATE_LIMIT_RPS", "0.5")

	cfg := FromEnv()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr override, got %q", cfg.Addr)
	}
	if cfg.CatalogTimeout != 2*time.Second {
		t.Fatalf("plain seconds should parse, got %v", cfg.CatalogTimeout)
	}
	if cfg.ImageProbeTimeout != 750*time.Millisecond {
		t.Fatalf("duration should parse, got %v", cfg.ImageProbeTimeout)
	}
	if cfg.ImageProbeConcurrency != 4 {
		t.Fatalf("invalid int should fall back, got %d", cfg.ImageProbeConcurrency)
	}
	if cfg.CatalogRateLimitRPS != 0.5 {
		t.Fatalf("expected 0.5 rps, got %v", cfg.CatalogRateLimitRPS)
	}
	if cfg.FavoritesDriver != FavoritesPostgres {
		t.Fatalf("favorites should follow the database, got %q", cfg.FavoritesDriver)
	}

	t.Setenv("FAVORITES_DRIVER", "SQLite")
	if got := FromEnv().FavoritesDriver; got != FavoritesSQLite {
		t.Fatalf("expected sqlite driver, got %q", got)
	}
}
