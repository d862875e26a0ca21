package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := loadFrom(viper.New())
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}

	if cfg.DemoMode {
		t.Error("demo mode should be off by default")
	}
	if cfg.Store.Backend != StoreBackendREST {
		t.Errorf("backend = %q, want rest", cfg.Store.Backend)
	}
	if cfg.TMDB.Language != "en-US" || cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("unexpected TMDB defaults %+v", cfg.TMDB)
	}
	if cfg.Cache.CatalogTTL != 10*time.Minute || cfg.Cache.UserTTL != 2*time.Minute {
		t.Errorf("unexpected cache TTLs %+v", cfg.Cache)
	}
	if cfg.Demo.Latency != 500*time.Millisecond {
		t.Errorf("demo latency = %v", cfg.Demo.Latency)
	}
	if cfg.HasStoreCredentials() {
		t.Error("defaults should carry no store credentials")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("MEDIADECK_DEMO_MODE", "true")
	t.Setenv("MEDIADECK_STORE_URL", "https://project.example.co")
	t.Setenv("MEDIADECK_STORE_ANON_KEY", "anon")
	t.Setenv("MEDIADECK_TMDB_API_KEY", "tmdb-token")
	t.Setenv("MEDIADECK_CACHE_USER_TTL", "30s")

	cfg, err := loadFrom(viper.New())
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}

	if !cfg.DemoMode {
		t.Error("expected demo mode from environment")
	}
	if !cfg.HasStoreCredentials() {
		t.Error("expected store credentials from environment")
	}
	if cfg.TMDB.APIKey != "tmdb-token" {
		t.Errorf("TMDB key = %q", cfg.TMDB.APIKey)
	}
	if cfg.Cache.UserTTL != 30*time.Second {
		t.Errorf("user TTL = %v", cfg.Cache.UserTTL)
	}
}

func TestLoadFrom_FileValues(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yaml := `
store:
  backend: local
  path: /tmp/mediadeck/local.db
rawg:
  api_key: rawg-key
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(v)
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if cfg.Store.Backend != StoreBackendLocal || cfg.Store.Path != "/tmp/mediadeck/local.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.RAWG.APIKey != "rawg-key" || cfg.RAWG.RateLimit != 5 {
		t.Errorf("unexpected RAWG config %+v", cfg.RAWG)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"bad base url", func(c *Config) { c.TMDB.BaseURL = "not a url" }},
		{"zero rate limit", func(c *Config) { c.RAWG.RateLimit = 0 }},
		{"negative latency", func(c *Config) { c.Demo.Latency = -time.Second }},
		{"zero ttl", func(c *Config) { c.Cache.CatalogTTL = 0 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := expandHome("~/data/cache"); got != "/home/tester/data/cache" {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed to %q", got)
	}
}
