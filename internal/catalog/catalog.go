// Package catalog builds the TMDB and RAWG clients for the configured mode.
package catalog

import (
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/catalog/rawg"
	"github.com/mmcdole/mediadeck/internal/catalog/tmdb"
)

// Clients holds one client per catalog
type Clients struct {
	Movies *tmdb.Client
	Games  *rawg.Client
}

// New builds live clients, or fixture-backed clients in demo mode. A catalog
// without an API key is still returned; its calls fail with
// domain.ErrCatalogNotConfigured so only that catalog degrades.
func New(cfg *adapter.Config, logger *slog.Logger) Clients {
	if logger == nil {
		logger = slog.Default()
	}

	tmdbOpts := tmdb.Options{
		APIKey:    cfg.TMDB.APIKey,
		BaseURL:   cfg.TMDB.BaseURL,
		ImageBase: cfg.TMDB.ImageBase,
		Language:  cfg.TMDB.Language,
		RateLimit: cfg.TMDB.RateLimit,
		Logger:    logger.With("provider", tmdb.Provider),
	}
	rawgOpts := rawg.Options{
		APIKey:    cfg.RAWG.APIKey,
		BaseURL:   cfg.RAWG.BaseURL,
		RateLimit: cfg.RAWG.RateLimit,
		Logger:    logger.With("provider", rawg.Provider),
	}

	if cfg.DemoMode {
		logger.Info("catalogs running on demo fixtures", "latency", cfg.Demo.Latency)
		return Clients{
			Movies: tmdb.NewDemoClient(tmdbOpts, cfg.Demo.Latency),
			Games:  rawg.NewDemoClient(rawgOpts, cfg.Demo.Latency),
		}
	}

	clients := Clients{
		Movies: tmdb.NewClient(tmdbOpts),
		Games:  rawg.NewClient(rawgOpts),
	}
	if !clients.Movies.Configured() {
		logger.Warn("TMDB API key not set, movie and series catalogs disabled")
	}
	if !clients.Games.Configured() {
		logger.Warn("RAWG API key not set, game catalog disabled")
	}
	return clients
}
