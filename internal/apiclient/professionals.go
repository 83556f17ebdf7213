package apiclient

import (
	"context"
	"net/http"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

type ProfessionalsService struct {
	conn *conn
}

// List returns content of the first page
func (s *ProfessionalsService) List(ctx context.Context) ([]models.Professional, error) {
	var p models.Page[models.Professional]
	err := s.conn.do(ctx, http.MethodGet, "/profissionais", nil, nil, &p)
	return p.Content, err
}

func (s *ProfessionalsService) Available(ctx context.Context) ([]models.Professional, error) {
	var professionals []models.Professional
	err := s.conn.do(ctx, http.MethodGet, "/profissionais/available", nil, nil, &professionals)
	return professionals, err
}

func (s *ProfessionalsService) Get(ctx context.Context, id int64) (models.Professional, error) {
	var p models.Professional
	err := s.conn.do(ctx, http.MethodGet, idPath("/profissionais", id), nil, nil, &p)
	return p, err
}

func (s *ProfessionalsService) Create(ctx context.Context, in models.ProfessionalInput) (models.Professional, error) {
	if err := validate.Struct(in); err != nil {
		return models.Professional{}, err
	}

	var p models.Professional
	err := s.conn.do(ctx, http.MethodPost, "/profissionais", nil, in, &p)
	return p, err
}

func (s *ProfessionalsService) Update(ctx context.Context, id int64, in models.ProfessionalInput) (models.Professional, error) {
	if err := validate.Struct(in); err != nil {
		return models.Professional{}, err
	}

	var p models.Professional
	err := s.conn.do(ctx, http.MethodPut, idPath("/profissionais", id), nil, in, &p)
	return p, err
}

func (s *ProfessionalsService) Delete(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodDelete, idPath("/profissionais", id), nil, nil, nil)
}

func (s *ProfessionalsService) Reactivate(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodPut, idPath("/profissionais", id, "reativar"), nil, nil, nil)
}
