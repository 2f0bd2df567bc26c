package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/upb/paper-assistant-gateway/config"
	"github.com/upb/paper-assistant-gateway/handlers"
	"github.com/upb/paper-assistant-gateway/middleware"
	"github.com/upb/paper-assistant-gateway/repositories"
	"github.com/upb/paper-assistant-gateway/repositories/postgres"
	"github.com/upb/paper-assistant-gateway/services/cache"
	"github.com/upb/paper-assistant-gateway/services/classifier"
	"github.com/upb/paper-assistant-gateway/services/credentials"
	"github.com/upb/paper-assistant-gateway/services/gateway"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/services/providers/crossref"
	"github.com/upb/paper-assistant-gateway/services/providers/openai"
	"github.com/upb/paper-assistant-gateway/services/providers/translate"
	"github.com/upb/paper-assistant-gateway/services/ratelimit"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config     *config.Config
	DB         *postgres.DB
	Logger     *zap.Logger
	HTTPClient *http.Client

	// Repositories
	Credentials repositories.CredentialRepository

	// Gateway components
	CredentialStore *credentials.Store
	Catalog         []providers.Provider
	Registry        *providers.Registry
	RateLimiter     *ratelimit.RateLimitService
	Cache           *cache.ResponseCache
	Classifier      *classifier.Classifier
	Gateway         *gateway.Service

	// HTTP surface
	AuthMiddleware *middleware.AuthMiddleware
	TokenValidator *middleware.HS256Validator
	GatewayHandler *handlers.GatewayHandler
	MessageHandler *handlers.MessageHandler
	HealthHandler  *handlers.HealthHandler
	StatusHandler  *handlers.StatusHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		HTTPClient: &http.Client{Timeout: cfg.Gateway.HTTPTimeout},
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initCredentials(ctx, cfg); err != nil {
		deps.closeDB()
		return nil, fmt.Errorf("failed to initialize credentials: %w", err)
	}

	if err := deps.initProviders(cfg); err != nil {
		deps.closeDB()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.initGateway(cfg)
	deps.initAuth(cfg)
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully",
		zap.Bool("persistent_credentials", deps.DB != nil),
		zap.Bool("auth_enabled", deps.AuthMiddleware.Enabled()),
		zap.String("locale", deps.Classifier.Locale().String()))
	return deps, nil
}

// initDatabase opens the optional credential database
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if !cfg.Database.Enabled() {
		d.Logger.Info("no database configured, credentials are kept in memory")
		return nil
	}

	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if cfg.Database.AutoMigrate {
		if err := db.InitSchema(ctx); err != nil {
			d.closeDB()
			return err
		}
	}

	d.Credentials = postgres.NewCredentialRepository(db, d.Logger)
	return nil
}

// initCredentials loads persisted credentials, then seeds keys from the
// environment for providers that have none
func (d *Dependencies) initCredentials(ctx context.Context, cfg *config.Config) error {
	d.CredentialStore = credentials.NewStore(d.Credentials, d.Logger)
	if err := d.CredentialStore.Load(ctx); err != nil {
		return err
	}

	seeds := map[string]string{
		providers.ProviderGroq:        cfg.Providers.GroqAPIKey,
		providers.ProviderHuggingFace: cfg.Providers.HuggingFaceAPIKey,
	}
	for id, secret := range seeds {
		if d.CredentialStore.Seed(id, secret) {
			d.Logger.Info("credential seeded from environment", zap.String("provider", id))
		}
	}
	return nil
}

// initProviders builds the catalog and the registry over it
func (d *Dependencies) initProviders(cfg *config.Config) error {
	catalog := providers.DefaultCatalog()

	if cfg.Gateway.CatalogFile != "" {
		file, err := providers.LoadCatalogFile(cfg.Gateway.CatalogFile)
		if err != nil {
			return err
		}
		catalog, err = providers.MergeCatalog(catalog, file.Providers)
		if err != nil {
			return err
		}
		d.Logger.Info("provider catalog overrides applied",
			zap.String("file", cfg.Gateway.CatalogFile),
			zap.Int("overrides", len(file.Providers)))
	}

	// The crossref entry follows the configured base URL
	for i := range catalog {
		if catalog[i].ID == providers.ProviderCrossref {
			catalog[i].Endpoint = cfg.Gateway.CrossrefBaseURL
		}
	}

	registry, err := providers.NewRegistry(catalog, d.CredentialStore)
	if err != nil {
		return err
	}

	d.Catalog = catalog
	d.Registry = registry

	if len(registry.Eligible(providers.KindAI)) == 0 {
		d.Logger.Warn("no AI provider has a credential yet")
	}
	return nil
}

// initGateway wires the limiter, cache, classifier and backends into the gateway
func (d *Dependencies) initGateway(cfg *config.Config) {
	d.RateLimiter = ratelimit.NewRateLimitService(d.Logger)
	d.RateLimiter.SetInterval(ratelimit.ServiceCrossref, cfg.Gateway.CrossrefMinInterval)

	d.Cache = cache.NewResponseCache(cfg.Gateway.CitationCacheTTL)
	d.Classifier = classifier.New(cfg.Gateway.Locale)

	backends := gateway.Backends{
		Chat:        openai.NewClient(d.HTTPClient, d.Logger),
		Translators: translate.NewBackends(d.Catalog, d.HTTPClient, d.Logger),
		Citations: crossref.NewClient(crossref.Config{
			BaseURL:      cfg.Gateway.CrossrefBaseURL,
			DOIBaseURL:   cfg.Gateway.DOIBaseURL,
			ContactEmail: cfg.Gateway.ContactEmail,
		}, d.HTTPClient, d.Logger),
	}

	d.Gateway = gateway.NewService(d.Registry, d.CredentialStore, d.RateLimiter, d.Cache, d.Classifier, backends, d.Logger)
}

// initAuth enables bearer auth on credential routes when a secret is configured
func (d *Dependencies) initAuth(cfg *config.Config) {
	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("AUTH_JWT_SECRET not set, credential routes are unauthenticated")
		d.AuthMiddleware = middleware.NewAuthMiddleware(nil, d.Logger)
		return
	}

	d.TokenValidator = middleware.NewHS256Validator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.TokenValidator, d.Logger)
}

func (d *Dependencies) initHandlers() {
	d.GatewayHandler = handlers.NewGatewayHandler(d.Gateway, d.Logger)
	d.MessageHandler = handlers.NewMessageHandler(d.GatewayHandler, d.AuthMiddleware.Authorize, d.Logger)
	d.StatusHandler = handlers.NewStatusHandler(d.Gateway, d.Classifier.Locale().String(), d.AuthMiddleware.Enabled(), d.Logger)

	if d.DB != nil {
		d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Registry, d.Logger)
	} else {
		d.HealthHandler = handlers.NewHealthHandler(nil, d.Registry, d.Logger)
	}
}

func (d *Dependencies) closeDB() {
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.HTTPClient != nil {
		d.HTTPClient.CloseIdleConnections()
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
