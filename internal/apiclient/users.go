package apiclient

import (
	"context"
	"net/http"

	"github.com/nkiryanov/carectl/internal/models"
)

// Account management, available to administrators only
type UsersService struct {
	conn *conn
}

func (s *UsersService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn.do(ctx, http.MethodGet, "/users", nil, nil, &users)
	return users, err
}

func (s *UsersService) Update(ctx context.Context, id int64, user models.User) (models.User, error) {
	var updated models.User
	err := s.conn.do(ctx, http.MethodPut, idPath("/users", id), nil, user, &updated)
	return updated, err
}

func (s *UsersService) SetPassword(ctx context.Context, id int64, password string) error {
	return s.conn.do(ctx, http.MethodPut, idPath("/users", id), nil, map[string]string{"password": password}, nil)
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodDelete, idPath("/users", id), nil, nil, nil)
}
