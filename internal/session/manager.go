package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/logger"
	"github.com/nkiryanov/carectl/internal/models"
)

const (
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// The failed request has a body that cannot be sent again
var ErrNotReplayable = errors.New("request body cannot be replayed")

// Refresher exchanges a refresh token for a new token pair
// Returned pair may omit the refresh token when the backend does not rotate it
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Session manager with sensible defaults
type Config struct {
	// Lifetime of access tokens that carry no 'exp' claim
	AccessTTL time.Duration

	// Lifetime of refresh tokens
	RefreshTTL time.Duration

	// Called every time the session expires and credentials are cleared
	OnExpired func()

	Logger logger.Logger

	// Clock, time.Now if not set
	Now func() time.Time
}

// Manager owns the token pair of one profile.
// Requests get credentials attached and recover from an expired access token once.
type Manager struct {
	store     *Store
	refresher Refresher

	accessTTL  time.Duration
	refreshTTL time.Duration
	onExpired  func()
	log        logger.Logger
	now        func() time.Time

	// Concurrent 401s share one refresh call
	group singleflight.Group
}

func New(store *Store, refresher Refresher, cfg Config) *Manager {
	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTTL)

	if cfg.OnExpired == nil {
		cfg.OnExpired = func() {}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		store:      store,
		refresher:  refresher,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		onExpired:  cfg.OnExpired,
		log:        cfg.Logger.With("profile", store.Profile()),
		now:        cfg.Now,
	}
}

// Start persists a pair issued on login or registration
func (m *Manager) Start(ctx context.Context, pair models.TokenPair) error {
	if pair.Access.Value == "" {
		return errors.New("backend issued an empty access token")
	}

	err := m.save(ctx, pair)
	if err != nil {
		return fmt.Errorf("error while starting session. Err: %w", err)
	}

	m.log.Info("session started")
	return nil
}

// End clears both tokens
func (m *Manager) End(ctx context.Context) error {
	err := m.store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("error while ending session. Err: %w", err)
	}

	m.log.Info("session ended")
	return nil
}

// AccessToken returns the stored access token or apperrors.ErrCredentialNotFound
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.store.Get(ctx, models.SlotAccess)
}

// AttachCredentials sets the bearer token on req when an access token is stored
func (m *Manager) AttachCredentials(ctx context.Context, req *http.Request) error {
	token, err := m.store.Get(ctx, models.SlotAccess)
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	case errors.Is(err, apperrors.ErrCredentialNotFound):
		return nil
	default:
		return fmt.Errorf("error while reading access token. Err: %w", err)
	}
}

// HandleUnauthorized recovers from a 401 received for failed.
// Returns a copy of failed with fresh credentials which has to be sent once.
// Returns apperrors.ErrSessionExpired when no refresh path remains; credentials are cleared then.
func (m *Manager) HandleUnauthorized(ctx context.Context, failed *http.Request) (*http.Request, error) {
	if IsRetried(failed.Context()) {
		m.expire(ctx)
		return nil, fmt.Errorf("retried request rejected. Err: %w", apperrors.ErrSessionExpired)
	}

	if failed.Body != nil && failed.Body != http.NoBody && failed.GetBody == nil {
		return nil, ErrNotReplayable
	}

	token, err := m.refresh(ctx, bearer(failed))
	if err != nil {
		return nil, err
	}

	return retryWith(failed, token)
}

// Refresh token pair, calls made at the same time share the result.
// used is the access token the backend rejected.
func (m *Manager) refresh(ctx context.Context, used string) (string, error) {
	// Callers wait for the shared call, so a single canceled caller must not fail the rest
	ctx = context.WithoutCancel(ctx)

	token, err, shared := m.group.Do("refresh", func() (any, error) {
		// Other request may already refreshed the pair
		current, err := m.store.Get(ctx, models.SlotAccess)
		switch {
		case err == nil && current != used:
			m.log.Debug("access token replaced meanwhile, retry without refresh")
			return current, nil
		case err != nil && !errors.Is(err, apperrors.ErrCredentialNotFound):
			return "", fmt.Errorf("error while reading access token. Err: %w", err)
		}

		refreshToken, err := m.store.Get(ctx, models.SlotRefresh)
		switch {
		case errors.Is(err, apperrors.ErrCredentialNotFound):
			m.log.Warn("no refresh token stored")
			m.expire(ctx)
			return "", fmt.Errorf("no refresh token. Err: %w", apperrors.ErrSessionExpired)
		case err != nil:
			return "", fmt.Errorf("error while reading refresh token. Err: %w", err)
		}

		m.log.Debug("refreshing access token")
		pair, err := m.refresher.Refresh(ctx, refreshToken)
		if err != nil {
			m.log.Warn("refresh failed", "error", err)
			m.expire(ctx)
			return "", fmt.Errorf("%w: refresh failed. Err: %w", apperrors.ErrSessionExpired, err)
		}

		if err := m.save(ctx, pair); err != nil {
			return "", err
		}

		m.log.Debug("access token refreshed", "rotated", pair.Refresh.Value != "")
		return pair.Access.Value, nil
	})
	if err != nil {
		return "", err
	}

	if shared {
		m.log.Debug("refresh result shared")
	}
	return token.(string), nil
}

// Persist access token and refresh token when present, fill in missing expirations
func (m *Manager) save(ctx context.Context, pair models.TokenPair) error {
	now := m.now()

	access := pair.Access
	if access.ExpiresAt.IsZero() {
		exp, ok := tokenExpiry(access.Value)
		if !ok {
			exp = now.Add(m.accessTTL)
		}
		access.ExpiresAt = exp
	}

	if err := m.store.Save(ctx, models.SlotAccess, access); err != nil {
		return err
	}

	if pair.Refresh.Value == "" {
		return nil
	}

	refresh := pair.Refresh
	if refresh.ExpiresAt.IsZero() {
		refresh.ExpiresAt = now.Add(m.refreshTTL)
	}

	return m.store.Save(ctx, models.SlotRefresh, refresh)
}

// Clear both tokens and signal expiry
func (m *Manager) expire(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error("error while clearing credentials", "error", err)
	}

	m.log.Warn("session expired")
	m.onExpired()
}

func bearer(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
}

func retryWith(failed *http.Request, token string) (*http.Request, error) {
	retry := failed.Clone(markRetried(failed.Context()))

	if failed.GetBody != nil {
		body, err := failed.GetBody()
		if err != nil {
			return nil, fmt.Errorf("error while replaying request body. Err: %w", err)
		}
		retry.Body = body
	}

	retry.Header.Set("Authorization", "Bearer "+token)
	return retry, nil
}

type retriedKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// IsRetried reports whether the request with ctx is already a retry after refresh
func IsRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}
