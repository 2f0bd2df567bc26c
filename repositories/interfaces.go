package repositories

import (
	"context"

	"github.com/upb/paper-assistant-gateway/models"
)

// CredentialRepository persists provider credentials across restarts
type CredentialRepository interface {
	// List returns every stored credential
	List(ctx context.Context) ([]*models.Credential, error)

	// Upsert creates or replaces the credential for cred.ProviderID
	Upsert(ctx context.Context, cred *models.Credential) error

	// Delete removes the credential for providerID. Deleting a missing row is not an error.
	Delete(ctx context.Context, providerID string) error
}
