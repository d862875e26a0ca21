package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StoreBackend identifies the persistence backend
type StoreBackend string

const (
	StoreBackendREST  StoreBackend = "rest"
	StoreBackendLocal StoreBackend = "local"
)

// Config holds all application configuration
type Config struct {
	DemoMode bool          `mapstructure:"demo_mode"`
	Demo     DemoConfig    `mapstructure:"demo"`
	Store    StoreConfig   `mapstructure:"store"`
	TMDB     TMDBConfig    `mapstructure:"tmdb"`
	RAWG     RAWGConfig    `mapstructure:"rawg"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Browser  string        `mapstructure:"browser"` // empty = system default
}

// DemoConfig holds demo mode tuning
type DemoConfig struct {
	Latency time.Duration `mapstructure:"latency" validate:"gte=0"`
}

// StoreConfig holds persistence backend configuration
type StoreConfig struct {
	Backend  StoreBackend `mapstructure:"backend" validate:"oneof=rest local"`
	URL      string       `mapstructure:"url"`      // Backend URL (rest)
	AnonKey  string       `mapstructure:"anon_key"` // Anonymous access key (rest)
	Path     string       `mapstructure:"path"`     // bbolt file (local)
	Email    string       `mapstructure:"email"`    // Non-interactive sign-in
	Password string       `mapstructure:"password"`
}

// TMDBConfig holds film/TV catalog configuration
type TMDBConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url" validate:"required,url"`
	ImageBase string  `mapstructure:"image_base" validate:"required,url"`
	Language  string  `mapstructure:"language" validate:"required"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gt=0"` // requests per second
}

// RAWGConfig holds game catalog configuration
type RAWGConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url" validate:"required,url"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"gt=0"`
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	Dir        string        `mapstructure:"dir"` // empty = memory only
	CatalogTTL time.Duration `mapstructure:"catalog_ttl" validate:"gt=0"`
	UserTTL    time.Duration `mapstructure:"user_ttl" validate:"gt=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig holds the optional Prometheus listener
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // e.g. "127.0.0.1:9464", empty = disabled
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Demo: DemoConfig{
			Latency: 500 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend: StoreBackendREST,
			Path:    filepath.Join(defaultDataPath(), "local.db"),
		},
		TMDB: TMDBConfig{
			BaseURL:   "https://api.themoviedb.org/3",
			ImageBase: "https://image.tmdb.org/t/p",
			Language:  "en-US",
			RateLimit: 40,
		},
		RAWG: RAWGConfig{
			BaseURL:   "https://api.rawg.io/api",
			RateLimit: 5,
		},
		Cache: CacheConfig{
			CatalogTTL: 10 * time.Minute,
			UserTTL:    2 * time.Minute,
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "mediadeck.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "mediadeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "mediadeck")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "mediadeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mediadeck")
	}
}

// LoadConfig loads configuration from .env, the config file and the environment.
// Environment variables use the MEDIADECK_ prefix with dots replaced by
// underscores (store.anon_key -> MEDIADECK_STORE_ANON_KEY).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	return loadFrom(v)
}

// loadFrom applies defaults and environment overrides to v and decodes it
func loadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("MEDIADECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("demo_mode", d.DemoMode)
	v.SetDefault("demo.latency", d.Demo.Latency)

	v.SetDefault("store.backend", string(d.Store.Backend))
	v.SetDefault("store.url", d.Store.URL)
	v.SetDefault("store.anon_key", d.Store.AnonKey)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.email", d.Store.Email)
	v.SetDefault("store.password", d.Store.Password)

	v.SetDefault("tmdb.api_key", d.TMDB.APIKey)
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base", d.TMDB.ImageBase)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.rate_limit", d.TMDB.RateLimit)

	v.SetDefault("rawg.api_key", d.RAWG.APIKey)
	v.SetDefault("rawg.base_url", d.RAWG.BaseURL)
	v.SetDefault("rawg.rate_limit", d.RAWG.RateLimit)

	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.catalog_ttl", d.Cache.CatalogTTL)
	v.SetDefault("cache.user_ttl", d.Cache.UserTTL)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)

	v.SetDefault("metrics.listen", d.Metrics.Listen)
	v.SetDefault("browser", d.Browser)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field-level constraints. Missing store credentials are not
// a validation error here; they are fatal only when the store is opened.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasStoreCredentials returns true if the remote store URL and key are set
func (c *Config) HasStoreCredentials() bool {
	return strings.TrimSpace(c.Store.URL) != "" && strings.TrimSpace(c.Store.AnonKey) != ""
}

// SaveConfig writes the non-secret parts of the configuration to the config file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("demo_mode", cfg.DemoMode)
	v.Set("store.backend", string(cfg.Store.Backend))
	v.Set("store.url", cfg.Store.URL)
	v.Set("store.path", cfg.Store.Path)
	v.Set("store.email", cfg.Store.Email)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("metrics.listen", cfg.Metrics.Listen)
	v.Set("browser", cfg.Browser)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes the on-disk query cache, if any
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
