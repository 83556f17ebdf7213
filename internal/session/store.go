package session

import (
	"context"
	"fmt"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository"
)

// Store binds a credential repository to a single profile
type Store struct {
	repo    repository.CredentialRepo
	profile string
}

func NewStore(repo repository.CredentialRepo, profile string) *Store {
	return &Store{repo: repo, profile: profile}
}

func (s *Store) Profile() string {
	return s.profile
}

// Get returns the token in slot or apperrors.ErrCredentialNotFound
func (s *Store) Get(ctx context.Context, slot string) (string, error) {
	cred, err := s.repo.Get(ctx, s.profile, slot)
	if err != nil {
		return "", err
	}
	return cred.Value, nil
}

func (s *Store) Save(ctx context.Context, slot string, token models.IssuedToken) error {
	err := s.repo.Set(ctx, models.Credential{
		Profile:   s.profile,
		Slot:      slot,
		Value:     token.Value,
		ExpiresAt: token.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("error while saving %s. Err: %w", slot, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx, s.profile)
}
