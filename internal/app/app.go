// Package app is the composition root: it opens the persistence backend and
// the query cache once and builds every service on top of them.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/catalog"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/persistence/local"
	"github.com/mmcdole/mediadeck/internal/persistence/rest"
	"github.com/mmcdole/mediadeck/internal/service"
	"github.com/mmcdole/mediadeck/internal/store"
)

// storeTimeout bounds every request to the hosted backend
const storeTimeout = 15 * time.Second

// App holds the long-lived values shared by the TUI and the CLI
type App struct {
	Config *adapter.Config
	Logger *slog.Logger

	DB       *persistence.Client
	Cache    *store.QueryCache
	Queries  *service.Queries
	Identity domain.Identity

	Catalog     *service.CatalogService
	Watchlist   *service.WatchlistService
	Collections *service.CollectionService
	Reviews     *service.ReviewService
	Account     *service.AccountService
	Feed        *service.ChangeFeed
	Opener      *adapter.Opener

	// Changes receives the table name of each realtime change. Sends never
	// block; a full buffer drops the notification.
	Changes chan string
}

// OpenStore opens the configured persistence backend. Outside demo mode the
// hosted backend requires a URL and an anon key.
func OpenStore(cfg *adapter.Config, logger *slog.Logger) (*persistence.Client, error) {
	if cfg.DemoMode {
		logger.Info("persistence running on the demo mock")
		return persistence.NewMock(), nil
	}

	switch cfg.Store.Backend {
	case adapter.StoreBackendLocal:
		db, err := local.Open(cfg.Store.Path, logger.With("backend", "local"))
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		logger.Info("persistence opened", "backend", "local", "path", cfg.Store.Path)
		return db, nil
	case adapter.StoreBackendREST, "":
		if !cfg.HasStoreCredentials() {
			return nil, domain.ErrMissingCredentials
		}
		httpClient := &http.Client{Timeout: storeTimeout}
		db, _ := rest.Open(cfg.Store.URL, cfg.Store.AnonKey, httpClient, logger.With("backend", "rest"))
		logger.Info("persistence opened", "backend", "rest", "url", cfg.Store.URL)
		return db, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, cfg.Store.Backend)
	}
}

// New builds the application. The caller owns the returned App and must Close it.
func New(cfg *adapter.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	cache, err := store.NewQueryCache(cfg.Cache.Dir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open query cache: %w", err)
	}

	var identity domain.Identity
	if cfg.DemoMode {
		identity = service.DemoIdentity()
	} else {
		identity = service.NewAuthIdentity(db.Auth())
	}

	queries := service.NewQueries(cache, cfg.Cache.CatalogTTL, cfg.Cache.UserTTL, logger)
	clients := catalog.New(cfg, logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Cache:    cache,
		Queries:  queries,
		Identity: identity,
		Changes:  make(chan string, 16),
	}
	a.Feed = service.NewChangeFeed(db, queries, a.notify, logger)
	a.Catalog = service.NewCatalogService(clients.Movies, clients.Games, queries, logger)
	a.Watchlist = service.NewWatchlistService(db, identity, queries, logger)
	a.Collections = service.NewCollectionService(db, identity, queries, logger)
	a.Reviews = service.NewReviewService(db, identity, queries, logger)
	a.Account = service.NewAccountService(db.Auth(), identity, queries, a.Feed, logger)
	a.Opener = adapter.NewOpener(cfg.Browser, logger)
	return a, nil
}

func (a *App) notify(table string) {
	select {
	case a.Changes <- table:
	default:
	}
}

// Close stops the change feed and releases the store and the cache
func (a *App) Close() error {
	a.Feed.Stop()
	return errors.Join(a.DB.Close(), a.Cache.Close())
}
