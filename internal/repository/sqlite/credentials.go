package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
)

// CredentialRepo keeps credentials in a local sqlite file
// Times are stored as unix microseconds
type CredentialRepo struct {
	DB *sql.DB
}

const getCredential = `-- name: Get not expired credential
SELECT value, expires_at
FROM credentials
WHERE profile = ? AND slot = ? AND expires_at > ?
`

func (r *CredentialRepo) Get(ctx context.Context, profile string, slot string) (models.Credential, error) {
	cred := models.Credential{Profile: profile, Slot: slot}

	var expiresAt int64
	err := r.DB.QueryRowContext(ctx, getCredential, profile, slot, time.Now().UnixMicro()).Scan(&cred.Value, &expiresAt)

	switch {
	case err == nil:
		cred.ExpiresAt = time.UnixMicro(expiresAt)
		return cred, nil
	case errors.Is(err, sql.ErrNoRows):
		return cred, fmt.Errorf("repo error: %w", apperrors.ErrCredentialNotFound)
	default:
		return cred, fmt.Errorf("db error: %w", err)
	}
}

const setCredential = `-- name: Upsert credential
INSERT INTO credentials (profile, slot, value, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (profile, slot) DO UPDATE
SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at
`

func (r *CredentialRepo) Set(ctx context.Context, cred models.Credential) error {
	_, err := r.DB.ExecContext(ctx, setCredential,
		cred.Profile, cred.Slot, cred.Value, cred.ExpiresAt.UnixMicro(), time.Now().UnixMicro())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const clearCredentials = `-- name: Clear profile credentials
DELETE FROM credentials WHERE profile = ?
`

func (r *CredentialRepo) Clear(ctx context.Context, profile string) error {
	_, err := r.DB.ExecContext(ctx, clearCredentials, profile)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
