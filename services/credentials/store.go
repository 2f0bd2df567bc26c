package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/repositories"
	"go.uber.org/zap"
)

// Store is the process-wide map from provider id to secret.
// When a repository is attached, writes go through to it and Load reads it once at startup.
type Store struct {
	mu      sync.RWMutex
	secrets map[string]string
	repo    repositories.CredentialRepository
	logger  *zap.Logger
}

// NewStore creates a Store. repo may be nil for memory-only operation.
func NewStore(repo repositories.CredentialRepository, logger *zap.Logger) *Store {
	return &Store{
		secrets: make(map[string]string),
		repo:    repo,
		logger:  logger,
	}
}

// Load replaces the in-memory map with the persisted credentials
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	creds, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	loaded := make(map[string]string, len(creds))
	for _, cred := range creds {
		loaded[cred.ProviderID] = cred.Secret
	}

	s.mu.Lock()
	s.secrets = loaded
	s.mu.Unlock()

	s.logger.Info("credentials loaded", zap.Int("count", len(loaded)))
	return nil
}

// Seed sets a credential in memory only when none is present. Used for keys
// supplied through the environment, which never overwrite user-configured ones.
func (s *Store) Seed(providerID, secret string) bool {
	if secret == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.secrets[providerID]; ok {
		return false
	}
	s.secrets[providerID] = secret
	return true
}

// Get returns the credential for providerID
func (s *Store) Get(providerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	secret, ok := s.secrets[providerID]
	return secret, ok
}

// Has reports whether a credential is present for providerID
func (s *Store) Has(providerID string) bool {
	_, ok := s.Get(providerID)
	return ok
}

// Set stores a credential, persisting it first when a repository is attached
func (s *Store) Set(ctx context.Context, providerID, secret string) error {
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, models.NewCredential(providerID, secret)); err != nil {
			return fmt.Errorf("failed to persist credential for %s: %w", providerID, err)
		}
	}

	s.mu.Lock()
	s.secrets[providerID] = secret
	s.mu.Unlock()

	s.logger.Info("credential set", zap.String("provider_id", providerID))
	return nil
}

// Clear removes a credential
func (s *Store) Clear(ctx context.Context, providerID string) error {
	if s.repo != nil {
		if err := s.repo.Delete(ctx, providerID); err != nil {
			return fmt.Errorf("failed to delete credential for %s: %w", providerID, err)
		}
	}

	s.mu.Lock()
	delete(s.secrets, providerID)
	s.mu.Unlock()

	s.logger.Info("credential cleared", zap.String("provider_id", providerID))
	return nil
}
