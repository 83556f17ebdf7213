package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository"
)

// Run fn with a fresh, empty repository
type WithCredentialRepo func(t *testing.T, fn func(repo repository.CredentialRepo))

// CheckCredentialRepo runs the behaviour every credential repository must share
func CheckCredentialRepo(t *testing.T, withRepo WithCredentialRepo) {
	access := models.Credential{
		Profile:   "default",
		Slot:      models.SlotAccess,
		Value:     "access-token-value",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("get empty slot", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			_, err := repo.Get(t.Context(), "default", models.SlotAccess)

			require.ErrorIs(t, err, apperrors.ErrCredentialNotFound)
		})
	})

	t.Run("set and get", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			err := repo.Set(t.Context(), access)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), "default", models.SlotAccess)

			require.NoError(t, err)
			require.Equal(t, access.Profile, got.Profile)
			require.Equal(t, access.Slot, got.Slot)
			require.Equal(t, access.Value, got.Value)
			require.WithinDuration(t, access.ExpiresAt, got.ExpiresAt, time.Millisecond)
		})
	})

	t.Run("set replaces value", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			require.NoError(t, repo.Set(t.Context(), access))
			rotated := access
			rotated.Value = "rotated-value"
			require.NoError(t, repo.Set(t.Context(), rotated))

			got, err := repo.Get(t.Context(), "default", models.SlotAccess)

			require.NoError(t, err)
			require.Equal(t, "rotated-value", got.Value)
		})
	})

	t.Run("expired value not returned", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			expired := access
			expired.ExpiresAt = time.Now().Add(-time.Minute)
			require.NoError(t, repo.Set(t.Context(), expired))

			_, err := repo.Get(t.Context(), "default", models.SlotAccess)

			require.ErrorIs(t, err, apperrors.ErrCredentialNotFound, "expired credential must look absent")
		})
	})

	t.Run("slots are independent", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			require.NoError(t, repo.Set(t.Context(), access))

			_, err := repo.Get(t.Context(), "default", models.SlotRefresh)

			require.ErrorIs(t, err, apperrors.ErrCredentialNotFound)
		})
	})

	t.Run("clear removes profile slots only", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			refresh := access
			refresh.Slot = models.SlotRefresh
			other := access
			other.Profile = "other"
			for _, c := range []models.Credential{access, refresh, other} {
				require.NoError(t, repo.Set(t.Context(), c))
			}

			err := repo.Clear(t.Context(), "default")
			require.NoError(t, err)

			_, err = repo.Get(t.Context(), "default", models.SlotAccess)
			require.ErrorIs(t, err, apperrors.ErrCredentialNotFound)
			_, err = repo.Get(t.Context(), "default", models.SlotRefresh)
			require.ErrorIs(t, err, apperrors.ErrCredentialNotFound)

			got, err := repo.Get(t.Context(), "other", models.SlotAccess)
			require.NoError(t, err, "other profile must survive")
			require.Equal(t, access.Value, got.Value)
		})
	})

	t.Run("clear empty profile", func(t *testing.T) {
		withRepo(t, func(repo repository.CredentialRepo) {
			err := repo.Clear(t.Context(), "nobody")

			require.NoError(t, err)
		})
	})
}
