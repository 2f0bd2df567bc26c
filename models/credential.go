package models

import (
	"time"
)

// Credential is the secret a user configured for one provider
type Credential struct {
	ProviderID string    `json:"provider_id" db:"provider_id"`
	Secret     string    `json:"-" db:"secret"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Credential model
func (Credential) TableName() string {
	return "provider_credentials"
}

// NewCredential creates a new Credential stamped with the current time
func NewCredential(providerID, secret string) *Credential {
	return &Credential{
		ProviderID: providerID,
		Secret:     secret,
		UpdatedAt:  time.Now().UTC(),
	}
}
