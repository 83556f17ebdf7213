package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/nkiryanov/carectl/internal/models"
)

// Backend field names of the login and register payloads differ from ours
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type registerRequest struct {
	Name     string   `json:"nome"`
	Email    string   `json:"email"`
	Password string   `json:"senha"`
	Phone    string   `json:"telefone,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

func (r tokenResponse) pair() models.TokenPair {
	return models.TokenPair{
		Access:  models.IssuedToken{Value: r.Token},
		Refresh: models.IssuedToken{Value: r.RefreshToken},
	}
}

// TokenClient calls endpoints that work without a session
// It is the session.Refresher of the backend
type TokenClient struct {
	conn *conn
}

func NewTokenClient(baseURL string, opts ...Option) *TokenClient {
	o := newOptions(opts)

	return &TokenClient{conn: &conn{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: o.base},
		log:     o.log.With("component", "tokenclient"),
	}}
}

func (c *TokenClient) Login(ctx context.Context, in models.LoginInput) (models.TokenPair, error) {
	var resp tokenResponse
	err := c.conn.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{
		Email:    in.Email,
		Password: in.Password,
	}, &resp)
	if err != nil {
		return models.TokenPair{}, err
	}

	return resp.pair(), nil
}

// Register creates account, the backend logs the user in at once
func (c *TokenClient) Register(ctx context.Context, in models.RegisterInput) (models.TokenPair, *models.User, error) {
	var resp tokenResponse
	err := c.conn.do(ctx, http.MethodPost, "/auth/register", nil, registerRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
		Roles:    in.Roles,
	}, &resp)
	if err != nil {
		return models.TokenPair{}, nil, err
	}

	return resp.pair(), resp.User, nil
}

// Refresh is sent without session credentials and never retried
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var resp tokenResponse
	err := c.conn.do(ctx, http.MethodPost, "/auth/refresh-token", nil, refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return models.TokenPair{}, err
	}

	return resp.pair(), nil
}

func (c *TokenClient) ForgotPassword(ctx context.Context, email string) error {
	return c.conn.do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

func (c *TokenClient) ResetPassword(ctx context.Context, token string, password string) error {
	return c.conn.do(ctx, http.MethodPost, "/auth/reset-password", nil, map[string]string{
		"token":    token,
		"password": password,
	}, nil)
}
