package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

type PatientsService struct {
	conn *conn
}

// List returns a page of patients, zero page and size leave the backend defaults
func (s *PatientsService) List(ctx context.Context, page int, size int) (models.Page[models.Patient], error) {
	q := query()
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	var p models.Page[models.Patient]
	err := s.conn.do(ctx, http.MethodGet, "/pacientes", q, nil, &p)
	return p, err
}

func (s *PatientsService) Recent(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.conn.do(ctx, http.MethodGet, "/pacientes/recent", nil, nil, &patients)
	return patients, err
}

func (s *PatientsService) Get(ctx context.Context, id int64) (models.Patient, error) {
	var p models.Patient
	err := s.conn.do(ctx, http.MethodGet, idPath("/pacientes", id), nil, nil, &p)
	return p, err
}

func (s *PatientsService) Create(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	if err := validate.Struct(in); err != nil {
		return models.Patient{}, err
	}

	var p models.Patient
	err := s.conn.do(ctx, http.MethodPost, "/pacientes", nil, in, &p)
	return p, err
}

func (s *PatientsService) Update(ctx context.Context, id int64, in models.PatientInput) (models.Patient, error) {
	if err := validate.Struct(in); err != nil {
		return models.Patient{}, err
	}

	var p models.Patient
	err := s.conn.do(ctx, http.MethodPut, idPath("/pacientes", id), nil, in, &p)
	return p, err
}

func (s *PatientsService) Delete(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodDelete, idPath("/pacientes", id), nil, nil, nil)
}
