package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
)

type key struct {
	profile string
	slot    string
}

// CredentialRepo keeps credentials in process memory
// Used for one-shot runs and tests
type CredentialRepo struct {
	mu    sync.RWMutex
	creds map[key]models.Credential
}

func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{creds: make(map[key]models.Credential)}
}

func (r *CredentialRepo) Get(_ context.Context, profile string, slot string) (models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[key{profile, slot}]
	if !ok || !cred.ExpiresAt.After(time.Now()) {
		return models.Credential{}, fmt.Errorf("repo error: %w", apperrors.ErrCredentialNotFound)
	}

	return cred, nil
}

func (r *CredentialRepo) Set(_ context.Context, cred models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creds[key{cred.Profile, cred.Slot}] = cred
	return nil
}

func (r *CredentialRepo) Clear(_ context.Context, profile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.creds {
		if k.profile == profile {
			delete(r.creds, k)
		}
	}
	return nil
}
