// Package gateway is the single entry point for AI answers, translations and
// citation lookups. It selects a provider, applies rate limits and caching,
// invokes the backend and classifies failures.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/services/cache"
	"github.com/upb/paper-assistant-gateway/services/classifier"
	"github.com/upb/paper-assistant-gateway/services/providers"
	"github.com/upb/paper-assistant-gateway/utils"
)

// CredentialStore is the credential surface the gateway reads and mutates
type CredentialStore interface {
	Get(providerID string) (string, bool)
	Set(ctx context.Context, providerID, secret string) error
	Clear(ctx context.Context, providerID string) error
}

// RateLimiter gates dispatches to rate-limited services
type RateLimiter interface {
	Acquire(ctx context.Context, serviceKey string) error
}

// Backends are the transports the gateway invokes
type Backends struct {
	Chat        providers.ChatBackend
	Translators map[string]providers.Translator
	Citations   providers.CitationBackend
}

// Service orchestrates provider selection, rate limiting, caching and invocation
type Service struct {
	registry   *providers.Registry
	creds      CredentialStore
	limiter    RateLimiter
	cache      *cache.ResponseCache
	classifier *classifier.Classifier
	backends   Backends
	logger     *zap.Logger

	mu         sync.RWMutex
	lastServed map[providers.Kind]Served
	now        func() time.Time
}

// NewService creates a new gateway service with all dependencies
func NewService(
	registry *providers.Registry,
	creds CredentialStore,
	limiter RateLimiter,
	responseCache *cache.ResponseCache,
	errClassifier *classifier.Classifier,
	backends Backends,
	logger *zap.Logger,
) *Service {
	if backends.Translators == nil {
		backends.Translators = make(map[string]providers.Translator)
	}
	return &Service{
		registry:   registry,
		creds:      creds,
		limiter:    limiter,
		cache:      responseCache,
		classifier: errClassifier,
		backends:   backends,
		logger:     logger,
		lastServed: make(map[providers.Kind]Served),
		now:        time.Now,
	}
}

// selectProvider applies the selection precedence: a pinned provider (with an
// optional pinned model) is used as is, otherwise the lowest-priority enabled
// provider holding a credential. A model pin without a provider pin is ignored.
func (s *Service) selectProvider(kind providers.Kind, providerID, modelID string) (*providers.Provider, *providers.Model, error) {
	if providerID != "" {
		p, err := s.registry.Resolve(kind, providerID)
		if err != nil {
			return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("unknown provider: %s", providerID), services.ErrUnknownProvider).
				WithDetail("provider", providerID)
		}
		if !s.registry.HasCredential(p) {
			return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("please configure the %s API key in settings first", p.Name), services.ErrCredentialMissing).
				WithDetail("provider", p.ID)
		}
		m, err := s.registry.ResolveModel(p, modelID)
		if err != nil {
			return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
				fmt.Sprintf("model %s is not offered by %s", modelID, p.Name), services.ErrUnknownModel).
				WithDetail("provider", p.ID).
				WithDetail("model", modelID)
		}
		return p, m, nil
	}

	eligible := s.registry.Eligible(kind)
	if len(eligible) == 0 {
		return nil, nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"no provider configured, please add an API key for at least one service in settings", services.ErrNoProviderConfigured).
			WithDetail("kind", string(kind))
	}

	p := eligible[0]
	m, err := s.registry.DefaultModelOf(p)
	if err != nil {
		return nil, nil, services.WrapInternal("catalog default model missing", err)
	}
	return p, m, nil
}

// classify turns a backend failure into a categorized error. Context
// cancellation is returned untouched so callers can tell it apart.
func (s *Service) classify(err error, providerName string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return s.classifier.Classify(err, providerName)
}

func (s *Service) recordServed(kind providers.Kind, p *providers.Provider, modelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastServed[kind] = Served{
		ProviderID: p.ID,
		Provider:   p.Name,
		ModelID:    modelID,
		At:         s.now(),
	}
}

// LastServed returns the provider and model that last served kind
func (s *Service) LastServed(kind providers.Kind) (Served, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	served, ok := s.lastServed[kind]
	return served, ok
}

// AllServed returns a snapshot of LastServed for every kind served so far
func (s *Service) AllServed() map[providers.Kind]Served {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[providers.Kind]Served, len(s.lastServed))
	for k, v := range s.lastServed {
		out[k] = v
	}
	return out
}

// CacheStats returns response cache statistics
func (s *Service) CacheStats() cache.CacheStats {
	return s.cache.Stats()
}

// ListProviders returns the catalog entries of kind with their credential state
func (s *Service) ListProviders(kind providers.Kind) ([]providers.ProviderView, error) {
	if !kind.Valid() {
		return nil, services.Validationf("unknown provider kind: %s", kind).WithDetail("kind", string(kind))
	}
	return s.registry.ListProviders(kind), nil
}

// SetCredential stores secret for providerID
func (s *Service) SetCredential(ctx context.Context, providerID, secret string) error {
	p, ok := s.registry.Lookup(providerID)
	if !ok {
		return services.NewDomainError(services.ErrorTypeNotFound, "unknown provider: "+providerID, providers.ErrProviderNotFound).
			WithDetail("provider", providerID)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return services.Validationf("credential for %s cannot be empty", p.Name)
	}

	if err := s.creds.Set(ctx, p.ID, secret); err != nil {
		return services.WrapInternal("failed to store credential", err)
	}

	s.logger.Info("credential set",
		zap.String("provider", p.ID),
		zap.String("secret", utils.RedactSecret(secret)))
	return nil
}

// ClearCredential removes the credential of providerID
func (s *Service) ClearCredential(ctx context.Context, providerID string) error {
	if _, ok := s.registry.Lookup(providerID); !ok {
		return services.NewDomainError(services.ErrorTypeNotFound, "unknown provider: "+providerID, providers.ErrProviderNotFound).
			WithDetail("provider", providerID)
	}
	if err := s.creds.Clear(ctx, providerID); err != nil {
		return services.WrapInternal("failed to clear credential", err)
	}

	s.logger.Info("credential cleared", zap.String("provider", providerID))
	return nil
}
