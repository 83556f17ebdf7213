package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
)

// Common interface of pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type CredentialRepo struct {
	DB DBTX
}

const getCredential = `-- name: Get not expired credential
SELECT profile, slot, value, expires_at
FROM credentials
WHERE profile = $1 AND slot = $2 AND expires_at > $3
`

func (r *CredentialRepo) Get(ctx context.Context, profile string, slot string) (models.Credential, error) {
	rows, _ := r.DB.Query(ctx, getCredential, profile, slot, time.Now())
	cred, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Credential, error) {
		var c models.Credential
		err := row.Scan(&c.Profile, &c.Slot, &c.Value, &c.ExpiresAt)
		return c, err
	})

	switch {
	case err == nil:
		return cred, nil
	case errors.Is(err, pgx.ErrNoRows):
		return cred, fmt.Errorf("repo error: %w", apperrors.ErrCredentialNotFound)
	default:
		return cred, dbError(err)
	}
}

const setCredential = `-- name: Upsert credential
INSERT INTO credentials (profile, slot, value, expires_at, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (profile, slot) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
`

func (r *CredentialRepo) Set(ctx context.Context, cred models.Credential) error {
	_, err := r.DB.Exec(ctx, setCredential, cred.Profile, cred.Slot, cred.Value, cred.ExpiresAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

const clearCredentials = `-- name: Clear profile credentials
DELETE FROM credentials WHERE profile = $1
`

func (r *CredentialRepo) Clear(ctx context.Context, profile string) error {
	_, err := r.DB.Exec(ctx, clearCredentials, profile)
	if err != nil {
		return dbError(err)
	}
	return nil
}

// Wrap connection failures into apperrors.ErrStoreUnavailable so callers may tell them from bad data
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return fmt.Errorf("db error: %w: %w", apperrors.ErrStoreUnavailable, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("db error: %w: %w", apperrors.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("db error: %w", err)
}
