package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository"
	"github.com/nkiryanov/carectl/internal/testutil"
)

func Test_CredentialRepo(t *testing.T) {
	testutil.CheckCredentialRepo(t, func(t *testing.T, fn func(repo repository.CredentialRepo)) {
		fn(NewCredentialRepo())
	})

	t.Run("concurrent access", func(t *testing.T) {
		repo := NewCredentialRepo()

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cred := models.Credential{Profile: "default", Slot: models.SlotAccess, Value: "v", ExpiresAt: time.Now().Add(time.Hour)}
				if i%2 == 0 {
					_ = repo.Set(t.Context(), cred)
				} else {
					_, _ = repo.Get(t.Context(), cred.Profile, cred.Slot)
				}
			}()
		}
		wg.Wait()

		got, err := repo.Get(t.Context(), "default", models.SlotAccess)
		require.NoError(t, err)
		require.Equal(t, "v", got.Value)
	})
}
