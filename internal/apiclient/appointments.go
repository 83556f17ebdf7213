package apiclient

import (
	"context"
	"net/http"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

type AppointmentsService struct {
	conn *conn
}

func (s *AppointmentsService) ByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	var as []models.Appointment
	err := s.conn.do(ctx, http.MethodGet, "/agendamentos", query("data", date), nil, &as)
	return as, err
}

func (s *AppointmentsService) Today(ctx context.Context) ([]models.Appointment, error) {
	var as []models.Appointment
	err := s.conn.do(ctx, http.MethodGet, "/agendamentos/hoje", nil, nil, &as)
	return as, err
}

func (s *AppointmentsService) ByPatient(ctx context.Context, patientID int64, from string, to string) ([]models.Appointment, error) {
	var as []models.Appointment
	err := s.conn.do(ctx, http.MethodGet, idPath("/agendamentos/paciente", patientID), query("dataInicio", from, "dataFim", to), nil, &as)
	return as, err
}

func (s *AppointmentsService) ByProfessional(ctx context.Context, professionalID int64, from string, to string) ([]models.Appointment, error) {
	var as []models.Appointment
	err := s.conn.do(ctx, http.MethodGet, idPath("/agendamentos/profissional", professionalID), query("dataInicio", from, "dataFim", to), nil, &as)
	return as, err
}

func (s *AppointmentsService) Get(ctx context.Context, id int64) (models.Appointment, error) {
	var a models.Appointment
	err := s.conn.do(ctx, http.MethodGet, idPath("/agendamentos", id), nil, nil, &a)
	return a, err
}

func (s *AppointmentsService) Create(ctx context.Context, in models.AppointmentInput) (models.Appointment, error) {
	if err := validate.Struct(in); err != nil {
		return models.Appointment{}, err
	}

	var a models.Appointment
	err := s.conn.do(ctx, http.MethodPost, "/agendamentos", nil, in, &a)
	return a, err
}

func (s *AppointmentsService) Update(ctx context.Context, id int64, in models.AppointmentInput) (models.Appointment, error) {
	if err := validate.Struct(in); err != nil {
		return models.Appointment{}, err
	}

	var a models.Appointment
	err := s.conn.do(ctx, http.MethodPut, idPath("/agendamentos", id), nil, in, &a)
	return a, err
}

func (s *AppointmentsService) Delete(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodDelete, idPath("/agendamentos", id), nil, nil, nil)
}
