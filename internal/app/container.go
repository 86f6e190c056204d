// Package app wires lingua's bounded contexts into a single container shared
// by the CLI, the HTTP bridge, the MCP server and the worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	historyApp "github.com/felixgeelhaar/lingua/internal/history/application"
	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	historyCloud "github.com/felixgeelhaar/lingua/internal/history/infrastructure/cloud"
	historyPersistence "github.com/felixgeelhaar/lingua/internal/history/infrastructure/persistence"
	licensingApp "github.com/felixgeelhaar/lingua/internal/licensing/application"
	licensingPersistence "github.com/felixgeelhaar/lingua/internal/licensing/infrastructure/persistence"
	"github.com/felixgeelhaar/lingua/internal/licensing/infrastructure/remote"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/httpclient"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/kvstore"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/taskqueue"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	translationDomain "github.com/felixgeelhaar/lingua/internal/translation/domain"
	"github.com/felixgeelhaar/lingua/internal/translation/infrastructure/openaicompat"
	"github.com/felixgeelhaar/lingua/internal/translation/infrastructure/plugin"
	"github.com/felixgeelhaar/lingua/pkg/config"
	"github.com/felixgeelhaar/lingua/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Storage
	Store kvstore.Store

	// Licensing
	LicenseManager *licensingApp.Manager

	// History
	History        *historyApp.Store
	SyncDispatcher translationApp.SyncDispatcher

	// Translation
	Providers   *translationDomain.Registry
	Plugins     *plugin.Loader
	Translation *translationApp.Service

	// Background sync
	SyncPool        *taskqueue.Pool
	localDispatcher *historyApp.LocalDispatcher
	EventPublisher  eventbus.Publisher
}

// NewContainer opens the store and builds every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	store, err := kvstore.Open(ctx, kvstore.Config{
		Driver:    kvstore.Driver(cfg.StoreDriver),
		Path:      cfg.StorePath,
		URL:       cfg.StoreURL(),
		Namespace: cfg.StoreNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	c.Store = store
	c.Health.Register("store", observability.PingChecker("store", true, c.pingStore))
	logger.Debug("store opened", "driver", cfg.StoreDriver)

	// Licensing
	licenseHTTP := httpclient.New(httpclient.Config{
		Name:    "licensing",
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
	}, logger)
	c.LicenseManager = licensingApp.NewManager(
		licensingPersistence.NewKVRepository(store),
		remote.NewValidator(licenseHTTP),
		logger,
	).WithMetrics(c.Metrics)

	// History
	c.History = historyApp.NewStore(
		historyPersistence.NewKVRepository(store),
		historyCloud.NewClient(historyCloud.NewHTTPClient(cfg.APIURL, cfg.HTTPTimeout, logger)),
		logger,
	).WithMetrics(c.Metrics)

	// Translation providers: built-in OpenAI-compatible endpoints first, then
	// plugins, which replace a built-in provider with the same id.
	c.Providers = translationDomain.NewRegistry()
	openaicompat.Register(c.Providers)
	c.Plugins = plugin.NewLoader(logger)
	if cfg.PluginDir != "" {
		loaded := c.Plugins.LoadDir(ctx, cfg.PluginDir, c.Providers, !cfg.PluginInsecure)
		if len(loaded) > 0 {
			logger.Info("provider plugins loaded", "providers", loaded)
		}
	}

	if err := c.setupSyncDispatch(); err != nil {
		c.Close()
		return nil, err
	}

	c.Translation = translationApp.NewService(
		c.LicenseManager,
		c.History,
		c.Providers,
		credentialSource{cfg: cfg},
		logger,
	).WithMetrics(c.Metrics)
	if c.SyncDispatcher != nil {
		c.Translation.WithDispatcher(c.SyncDispatcher)
	}

	return c, nil
}

func (c *Container) setupSyncDispatch() error {
	switch c.Config.SyncDispatch {
	case config.SyncDispatchOff:
		return nil

	case config.SyncDispatchInline:
		bus := eventbus.NewInProcessBus(c.Logger)
		bus.RegisterHandler(historyApp.NewSyncHandler(c.History, c.currentSession, c.Logger))
		c.EventPublisher = bus
		c.SyncDispatcher = historyApp.NewEventDispatcher(bus, c.Logger)
		return nil

	case config.SyncDispatchRabbitMQ:
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
			c.SyncDispatcher = historyApp.NewEventDispatcher(publisher, c.Logger)
			return nil
		}
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, syncing in-process", "error", err)
		fallthrough

	default:
		pool, err := taskqueue.NewPool(taskqueue.Options{Size: 1, ExpiryDuration: time.Minute}, c.Logger)
		if err != nil {
			return err
		}
		c.SyncPool = pool
		c.localDispatcher = historyApp.NewLocalDispatcher(c.History, pool, c.Logger).WithTimeout(c.Config.SyncTimeout)
		c.SyncDispatcher = c.localDispatcher
		return nil
	}
}

// pingStore uses the backend's Ping when it has one and falls back to a read.
func (c *Container) pingStore(ctx context.Context) error {
	if pinger, ok := c.Store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	_, err := c.Store.Get(ctx, "licenseKey")
	return err
}

// SessionSource resolves history sessions from the current license status.
func (c *Container) SessionSource() historyApp.SessionSource {
	return c.currentSession
}

// currentSession is resolved per call; Translation does not exist yet while
// sync dispatch is wired.
func (c *Container) currentSession(ctx context.Context) historyDomain.Session {
	return c.Translation.Session(ctx)
}

// WaitForBackgroundSync blocks until in-process syncs have finished.
func (c *Container) WaitForBackgroundSync() {
	if c.localDispatcher != nil {
		c.localDispatcher.Wait()
	}
}

// Close releases every resource the container owns.
func (c *Container) Close() {
	c.WaitForBackgroundSync()

	if c.SyncPool != nil {
		if err := c.SyncPool.Release(5 * time.Second); err != nil {
			c.Logger.Warn("error releasing sync pool", "error", err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.Plugins != nil {
		c.Plugins.UnloadAll()
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warn("error closing store", "error", err)
		}
	}
}

// credentialSource reads provider credentials from configuration.
type credentialSource struct {
	cfg *config.Config
}

func (s credentialSource) ProviderConfig(id string) translationDomain.ProviderConfig {
	creds := s.cfg.Providers[id]
	return translationDomain.ProviderConfig{
		APIKey:  creds.APIKey,
		Model:   creds.Model,
		BaseURL: creds.BaseURL,
	}
}
