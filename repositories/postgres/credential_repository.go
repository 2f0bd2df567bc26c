package postgres

import (
	"context"
	"fmt"

	"github.com/upb/paper-assistant-gateway/models"
	"github.com/upb/paper-assistant-gateway/repositories"
	"go.uber.org/zap"
)

// CredentialRepository implements the repositories.CredentialRepository interface
type CredentialRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB, logger *zap.Logger) repositories.CredentialRepository {
	return &CredentialRepository{
		db:     db,
		logger: logger,
	}
}

// List returns every stored credential ordered by provider id
func (r *CredentialRepository) List(ctx context.Context) ([]*models.Credential, error) {
	query := `
		SELECT provider_id, secret, updated_at
		FROM provider_credentials
		ORDER BY provider_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred := &models.Credential{}
		if err := rows.Scan(&cred.ProviderID, &cred.Secret, &cred.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}

	return creds, nil
}

// Upsert creates or replaces a credential
func (r *CredentialRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO provider_credentials (provider_id, secret, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_id) DO UPDATE
		SET secret = EXCLUDED.secret, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, cred.ProviderID, cred.Secret, cred.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	r.logger.Debug("credential stored", zap.String("provider_id", cred.ProviderID))
	return nil
}

// Delete removes a credential
func (r *CredentialRepository) Delete(ctx context.Context, providerID string) error {
	query := `DELETE FROM provider_credentials WHERE provider_id = $1`

	if _, err := r.db.ExecContext(ctx, query, providerID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	r.logger.Debug("credential deleted", zap.String("provider_id", providerID))
	return nil
}
