package repository

import (
	"context"

	"github.com/nkiryanov/carectl/internal/models"
)

// Credential repository interface
// Every implementation must be safe for concurrent use
type CredentialRepo interface {
	// Return credential stored in the slot
	// If slot is empty or its value has expired must return apperrors.ErrCredentialNotFound
	Get(ctx context.Context, profile string, slot string) (models.Credential, error)

	// Store credential, replacing any value already in the slot
	Set(ctx context.Context, cred models.Credential) error

	// Remove every slot of the profile
	// Clearing an empty profile is not an error
	Clear(ctx context.Context, profile string) error
}
