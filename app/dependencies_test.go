package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/upb/paper-assistant-gateway/config"
	"github.com/upb/paper-assistant-gateway/services/providers"
)

func TestNewDependencies(t *testing.T) {
	t.Run("memory-only initialization", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(ctx, cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, deps)

		// Infrastructure
		assert.NotNil(t, deps.Config)
		assert.Nil(t, deps.DB)
		assert.Nil(t, deps.Credentials)
		assert.NotNil(t, deps.HTTPClient)
		assert.Equal(t, cfg.Gateway.HTTPTimeout, deps.HTTPClient.Timeout)

		// Gateway components
		assert.NotNil(t, deps.Registry)
		assert.NotNil(t, deps.Gateway)
		assert.Equal(t, time.Second, deps.RateLimiter.Interval("crossref"))
		assert.Equal(t, cfg.Gateway.CitationCacheTTL, deps.Cache.Stats().TTL)
		assert.Equal(t, "zh", deps.Classifier.Locale().String())

		// HTTP surface
		assert.NotNil(t, deps.GatewayHandler)
		assert.NotNil(t, deps.MessageHandler)
		assert.NotNil(t, deps.HealthHandler)
		assert.NotNil(t, deps.StatusHandler)

		assert.NoError(t, deps.Close(ctx))
	})

	t.Run("environment keys are seeded", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Providers.GroqAPIKey = "gsk_env"

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		secret, ok := deps.CredentialStore.Get(providers.ProviderGroq)
		assert.True(t, ok)
		assert.Equal(t, "gsk_env", secret)
		assert.False(t, deps.CredentialStore.Has(providers.ProviderHuggingFace))

		eligible := deps.Registry.Eligible(providers.KindAI)
		require.Len(t, eligible, 1)
		assert.Equal(t, providers.ProviderGroq, eligible[0].ID)
	})

	t.Run("catalog file overrides are merged", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - id: bing
    enabled: false
  - id: deepl
    kind: translation
    name: DeepL
    priority: 9
    models:
      - id: default
        name: Default
`), 0o600))

		cfg := testConfig(t)
		cfg.Gateway.CatalogFile = path

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		bing, ok := deps.Registry.Lookup(providers.ProviderBing)
		require.True(t, ok)
		assert.False(t, bing.Enabled)

		deepl, ok := deps.Registry.Lookup("deepl")
		require.True(t, ok)
		assert.Equal(t, "DeepL", deepl.Name)
	})

	t.Run("missing catalog file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Gateway.CatalogFile = filepath.Join(t.TempDir(), "absent.yaml")

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize providers")
	})

	t.Run("crossref endpoint follows configuration", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Gateway.CrossrefBaseURL = "http://crossref.internal"

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		p, ok := deps.Registry.Lookup(providers.ProviderCrossref)
		require.True(t, ok)
		assert.Equal(t, "http://crossref.internal", p.Endpoint)
	})

	t.Run("database connection failure", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Database.Host = "invalid-host-that-does-not-exist"

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestInitAuth(t *testing.T) {
	t.Run("disabled without secret", func(t *testing.T) {
		deps, err := NewDependencies(context.Background(), testConfig(t), zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.False(t, deps.AuthMiddleware.Enabled())
		assert.Nil(t, deps.TokenValidator)
	})

	t.Run("enabled with secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.JWTSecret = "test-secret"

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.True(t, deps.AuthMiddleware.Enabled())
		require.NotNil(t, deps.TokenValidator)

		token, err := deps.TokenValidator.IssueToken("extension", time.Minute)
		require.NoError(t, err)
		claims, err := deps.TokenValidator.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "extension", claims.Subject)
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins:  []string{"chrome-extension://*"},
		},
		Database: config.DatabaseConfig{
			Port:            5432,
			User:            "test",
			Database:        "test",
			SSLMode:         "disable",
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
		},
		Auth: config.AuthConfig{Issuer: "paper-assistant"},
		Gateway: config.GatewayConfig{
			CrossrefBaseURL:     "https://api.crossref.org",
			DOIBaseURL:          "https://doi.org",
			ContactEmail:        "test@example.com",
			CrossrefMinInterval: time.Second,
			CitationCacheTTL:    10 * time.Minute,
			HTTPTimeout:         30 * time.Second,
			Locale:              "zh",
		},
		Observability: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"},
	}
}
