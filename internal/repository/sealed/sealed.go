package sealed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository"
)

const (
	KeyLen   = 32
	nonceLen = 24
)

// CredentialRepo encrypts values before they reach the wrapped repository
// Profile, slot and expiry are stored as is
type CredentialRepo struct {
	repo repository.CredentialRepo
	key  [KeyLen]byte
}

// New wraps repo with secretbox sealing
// hexKey is 32 bytes encoded as hex, e.g. the output of cmd/gensecret
func New(repo repository.CredentialRepo, hexKey string) (*CredentialRepo, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("secret key is not valid hex. Err: %w", err)
	}
	if len(raw) != KeyLen {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", KeyLen, len(raw))
	}

	r := &CredentialRepo{repo: repo}
	copy(r.key[:], raw)

	return r, nil
}

func (r *CredentialRepo) Get(ctx context.Context, profile string, slot string) (models.Credential, error) {
	cred, err := r.repo.Get(ctx, profile, slot)
	if err != nil {
		return cred, err
	}

	value, err := r.open(cred.Value)
	if err != nil {
		return models.Credential{}, err
	}

	cred.Value = value
	return cred, nil
}

func (r *CredentialRepo) Set(ctx context.Context, cred models.Credential) error {
	sealed, err := r.seal(cred.Value)
	if err != nil {
		return err
	}

	cred.Value = sealed
	return r.repo.Set(ctx, cred)
}

func (r *CredentialRepo) Clear(ctx context.Context, profile string) error {
	return r.repo.Clear(ctx, profile)
}

// Sealed value is base64(nonce || box)
func (r *CredentialRepo) seal(value string) (string, error) {
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("cant generate nonce. Err: %w", err)
	}

	out := secretbox.Seal(nonce[:], []byte(value), &nonce, &r.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (r *CredentialRepo) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceLen {
		return "", apperrors.ErrCredentialSealed
	}

	var nonce [nonceLen]byte
	copy(nonce[:], raw[:nonceLen])

	value, ok := secretbox.Open(nil, raw[nonceLen:], &nonce, &r.key)
	if !ok {
		return "", apperrors.ErrCredentialSealed
	}

	return string(value), nil
}
