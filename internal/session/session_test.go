package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository/memory"
)

type fakeRefresher struct {
	calls atomic.Int32
	pair  models.TokenPair
	err   error
	delay time.Duration
}

func (r *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	return r.pair, r.err
}

// Backend accepting only bearer tokens in its valid set
type fakeBackend struct {
	*httptest.Server

	mu     sync.Mutex
	valid  map[string]bool
	hits   atomic.Int32
	bodies []string
}

func newFakeBackend(t *testing.T, validTokens ...string) *fakeBackend {
	b := &fakeBackend{valid: make(map[string]bool)}
	for _, token := range validTokens {
		b.valid[token] = true
	}

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.bodies = append(b.bodies, string(body))

		if !b.valid[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")] {
			http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(b.Close)

	return b
}

type sessionEnv struct {
	repo      *memory.CredentialRepo
	store     *Store
	manager   *Manager
	refresher *fakeRefresher
	expired   *atomic.Int32
	client    *http.Client
}

func newSessionEnv(refresher *fakeRefresher, access string, refresh string) sessionEnv {
	repo := memory.NewCredentialRepo()
	store := NewStore(repo, "default")
	expired := &atomic.Int32{}

	m := New(store, refresher, Config{OnExpired: func() { expired.Add(1) }})

	ctx := context.Background()
	if access != "" {
		_ = store.Save(ctx, models.SlotAccess, models.IssuedToken{Value: access, ExpiresAt: time.Now().Add(time.Hour)})
	}
	if refresh != "" {
		_ = store.Save(ctx, models.SlotRefresh, models.IssuedToken{Value: refresh, ExpiresAt: time.Now().Add(time.Hour)})
	}

	return sessionEnv{
		repo:      repo,
		store:     store,
		manager:   m,
		refresher: refresher,
		expired:   expired,
		client:    &http.Client{Transport: &Transport{Manager: m}},
	}
}

func (e sessionEnv) requireCleared(t *testing.T) {
	t.Helper()

	_, err := e.store.Get(t.Context(), models.SlotAccess)
	require.ErrorIs(t, err, apperrors.ErrCredentialNotFound, "access token must be cleared")
	_, err = e.store.Get(t.Context(), models.SlotRefresh)
	require.ErrorIs(t, err, apperrors.ErrCredentialNotFound, "refresh token must be cleared")
}

func rotatedPair() models.TokenPair {
	return models.TokenPair{
		Access:  models.IssuedToken{Value: "new-access"},
		Refresh: models.IssuedToken{Value: "new-refresh"},
	}
}

func TestManager_Start(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	t.Run("jwt expiry used for access token", func(t *testing.T) {
		access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		}).SignedString([]byte("backend-key"))
		require.NoError(t, err)

		repo := memory.NewCredentialRepo()
		m := New(NewStore(repo, "default"), &fakeRefresher{}, Config{Now: func() time.Time { return now }})

		err = m.Start(t.Context(), models.TokenPair{
			Access:  models.IssuedToken{Value: access},
			Refresh: models.IssuedToken{Value: "refresh"},
		})
		require.NoError(t, err)

		gotAccess, err := repo.Get(t.Context(), "default", models.SlotAccess)
		require.NoError(t, err)
		require.Equal(t, access, gotAccess.Value)
		require.WithinDuration(t, now.Add(2*time.Hour), gotAccess.ExpiresAt, 0)

		gotRefresh, err := repo.Get(t.Context(), "default", models.SlotRefresh)
		require.NoError(t, err)
		require.Equal(t, "refresh", gotRefresh.Value)
		require.WithinDuration(t, now.Add(7*24*time.Hour), gotRefresh.ExpiresAt, 0)
	})

	t.Run("opaque access token kept for a day", func(t *testing.T) {
		repo := memory.NewCredentialRepo()
		m := New(NewStore(repo, "default"), &fakeRefresher{}, Config{Now: func() time.Time { return now }})

		err := m.Start(t.Context(), models.TokenPair{Access: models.IssuedToken{Value: "opaque"}})
		require.NoError(t, err)

		got, err := repo.Get(t.Context(), "default", models.SlotAccess)
		require.NoError(t, err)
		require.WithinDuration(t, now.Add(24*time.Hour), got.ExpiresAt, 0)
	})

	t.Run("empty access token rejected", func(t *testing.T) {
		m := New(NewStore(memory.NewCredentialRepo(), "default"), &fakeRefresher{}, Config{})

		err := m.Start(t.Context(), models.TokenPair{})

		require.Error(t, err)
	})
}

func TestManager_End(t *testing.T) {
	env := newSessionEnv(&fakeRefresher{}, "access", "refresh")

	err := env.manager.End(t.Context())

	require.NoError(t, err)
	env.requireCleared(t)
	require.Zero(t, env.expired.Load(), "logout is not an expiry")
}

func TestManager_AttachCredentials(t *testing.T) {
	t.Run("token attached", func(t *testing.T) {
		env := newSessionEnv(&fakeRefresher{}, "access", "")
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

		err := env.manager.AttachCredentials(t.Context(), req)

		require.NoError(t, err)
		require.Equal(t, "Bearer access", req.Header.Get("Authorization"))
	})

	t.Run("no token no header", func(t *testing.T) {
		env := newSessionEnv(&fakeRefresher{}, "", "")
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

		err := env.manager.AttachCredentials(t.Context(), req)

		require.NoError(t, err)
		require.Empty(t, req.Header.Get("Authorization"))
	})
}

func TestManager_HandleUnauthorized(t *testing.T) {
	t.Run("already retried request expires session", func(t *testing.T) {
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "access", "refresh")
		req := httptest.NewRequest(http.MethodGet, "/escalas", nil).WithContext(markRetried(t.Context()))

		_, err := env.manager.HandleUnauthorized(t.Context(), req)

		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.Zero(t, env.refresher.calls.Load())
		require.EqualValues(t, 1, env.expired.Load())
		env.requireCleared(t)
	})

	t.Run("token replaced meanwhile", func(t *testing.T) {
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "current-access", "refresh")
		req := httptest.NewRequest(http.MethodGet, "/escalas", nil)
		req.Header.Set("Authorization", "Bearer stale-access")

		retry, err := env.manager.HandleUnauthorized(t.Context(), req)

		require.NoError(t, err)
		require.Zero(t, env.refresher.calls.Load(), "no refresh for a token replaced by another request")
		require.Equal(t, "Bearer current-access", retry.Header.Get("Authorization"))
		require.True(t, IsRetried(retry.Context()))
	})

	t.Run("refresh persists rotated pair", func(t *testing.T) {
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "access", "refresh")
		req := httptest.NewRequest(http.MethodGet, "/escalas", nil)
		req.Header.Set("Authorization", "Bearer access")

		retry, err := env.manager.HandleUnauthorized(t.Context(), req)

		require.NoError(t, err)
		require.EqualValues(t, 1, env.refresher.calls.Load())
		require.Equal(t, "Bearer new-access", retry.Header.Get("Authorization"))
		require.False(t, IsRetried(req.Context()), "original request must stay untouched")

		refresh, err := env.store.Get(t.Context(), models.SlotRefresh)
		require.NoError(t, err)
		require.Equal(t, "new-refresh", refresh)
	})

	t.Run("refresh token kept when not rotated", func(t *testing.T) {
		pair := models.TokenPair{Access: models.IssuedToken{Value: "new-access"}}
		env := newSessionEnv(&fakeRefresher{pair: pair}, "access", "refresh")
		req := httptest.NewRequest(http.MethodGet, "/escalas", nil)
		req.Header.Set("Authorization", "Bearer access")

		_, err := env.manager.HandleUnauthorized(t.Context(), req)

		require.NoError(t, err)
		refresh, err := env.store.Get(t.Context(), models.SlotRefresh)
		require.NoError(t, err)
		require.Equal(t, "refresh", refresh)
	})
}

func TestTransport(t *testing.T) {
	t.Run("valid token sent once", func(t *testing.T) {
		backend := newFakeBackend(t, "access")
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "access", "refresh")

		resp, err := env.client.Get(backend.URL + "/escalas")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.EqualValues(t, 1, backend.hits.Load())
		require.Zero(t, env.refresher.calls.Load())
	})

	t.Run("first 401 refreshes and retries once", func(t *testing.T) {
		backend := newFakeBackend(t, "new-access")
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "old-access", "refresh")

		resp, err := env.client.Get(backend.URL + "/escalas")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.EqualValues(t, 1, env.refresher.calls.Load(), "exactly one refresh call")
		require.EqualValues(t, 2, backend.hits.Load(), "original request plus exactly one retry")
		require.Zero(t, env.expired.Load())

		access, err := env.store.Get(t.Context(), models.SlotAccess)
		require.NoError(t, err)
		require.Equal(t, "new-access", access)
	})

	t.Run("second 401 is final", func(t *testing.T) {
		backend := newFakeBackend(t) // rejects everything
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "old-access", "refresh")

		resp, err := env.client.Get(backend.URL + "/escalas")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.EqualValues(t, 1, env.refresher.calls.Load(), "no refresh after the retry")
		require.EqualValues(t, 2, backend.hits.Load(), "no second retry")
		require.EqualValues(t, 1, env.expired.Load())
		env.requireCleared(t)
	})

	t.Run("no refresh token", func(t *testing.T) {
		backend := newFakeBackend(t)
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "old-access", "")

		resp, err := env.client.Get(backend.URL + "/escalas")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "original failure propagated")
		require.Zero(t, env.refresher.calls.Load())
		require.EqualValues(t, 1, backend.hits.Load())
		require.EqualValues(t, 1, env.expired.Load())
		env.requireCleared(t)
	})

	t.Run("refresh failure expires session", func(t *testing.T) {
		backend := newFakeBackend(t)
		env := newSessionEnv(&fakeRefresher{err: errors.New("refresh token revoked")}, "old-access", "refresh")

		resp, err := env.client.Get(backend.URL + "/escalas")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.EqualValues(t, 1, env.refresher.calls.Load())
		require.EqualValues(t, 1, backend.hits.Load())
		require.EqualValues(t, 1, env.expired.Load())
		env.requireCleared(t)
	})

	t.Run("other errors surfaced unmodified", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
		}))
		defer ts.Close()
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "access", "refresh")

		resp, err := env.client.Get(ts.URL + "/users")

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Zero(t, env.refresher.calls.Load())
	})

	t.Run("body replayed on retry", func(t *testing.T) {
		backend := newFakeBackend(t, "new-access")
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "old-access", "refresh")

		resp, err := env.client.Post(backend.URL+"/escalas", "application/json", strings.NewReader(`{"status":"ABERTA"}`))

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []string{`{"status":"ABERTA"}`, `{"status":"ABERTA"}`}, backend.bodies)
	})

	t.Run("not replayable body not retried", func(t *testing.T) {
		backend := newFakeBackend(t, "new-access")
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair()}, "old-access", "refresh")

		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, backend.URL+"/escalas", io.NopCloser(strings.NewReader(`{}`)))
		require.NoError(t, err)
		require.Nil(t, req.GetBody)

		resp, err := env.client.Do(req)

		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Zero(t, env.refresher.calls.Load())
		require.Zero(t, env.expired.Load(), "session is still usable")
	})

	t.Run("concurrent 401s share one refresh", func(t *testing.T) {
		backend := newFakeBackend(t, "new-access")
		env := newSessionEnv(&fakeRefresher{pair: rotatedPair(), delay: 50 * time.Millisecond}, "old-access", "refresh")

		const requests = 10
		codes := make([]int, requests)

		var wg sync.WaitGroup
		for i := range requests {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := env.client.Get(backend.URL + "/escalas")
				if err != nil {
					return
				}
				defer resp.Body.Close() // nolint:errcheck
				codes[i] = resp.StatusCode
			}()
		}
		wg.Wait()

		for i, code := range codes {
			require.Equal(t, http.StatusOK, code, "request %d should succeed", i)
		}
		require.EqualValues(t, 1, env.refresher.calls.Load(), "refresh must run once for all requests")
		require.Zero(t, env.expired.Load())
	})
}
