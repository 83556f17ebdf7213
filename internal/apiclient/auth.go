package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/session"
	"github.com/nkiryanov/carectl/internal/validate"
)

type AuthService struct {
	conn    *conn
	tokens  *TokenClient
	manager *session.Manager
}

// Login starts a session and returns the logged in user
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (models.User, error) {
	if err := validate.Struct(in); err != nil {
		return models.User{}, err
	}

	pair, err := s.tokens.Login(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("login failed. Err: %w", err)
	}

	if err := s.manager.Start(ctx, pair); err != nil {
		return models.User{}, err
	}

	return s.Me(ctx)
}

// Register creates an account and starts its session
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	if err := validate.Struct(in); err != nil {
		return models.User{}, err
	}

	pair, user, err := s.tokens.Register(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("register failed. Err: %w", err)
	}

	if err := s.manager.Start(ctx, pair); err != nil {
		return models.User{}, err
	}

	if user != nil {
		return *user, nil
	}
	return s.Me(ctx)
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.manager.End(ctx)
}

func (s *AuthService) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := s.conn.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, in models.ProfileInput) (models.User, error) {
	if err := validate.Struct(in); err != nil {
		return models.User{}, err
	}

	var user models.User
	err := s.conn.do(ctx, http.MethodPut, "/users/profile", nil, in, &user)
	return user, err
}

type changePasswordRequest struct {
	Current string `json:"senhaAtual"`
	New     string `json:"novaSenha"`
}

func (s *AuthService) ChangePassword(ctx context.Context, current string, next string) error {
	return s.conn.do(ctx, http.MethodPut, "/users/me/password", nil, changePasswordRequest{
		Current: current,
		New:     next,
	}, nil)
}
