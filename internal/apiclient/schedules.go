package apiclient

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/nkiryanov/carectl/internal/models"
)

type SchedulesService struct {
	conn *conn
}

// Outgoing schedule, the backend takes times as horaInicio/horaFim with seconds
type scheduleRequest struct {
	ProfessionalID int64  `json:"profissionalId"`
	PatientID      int64  `json:"pacienteId"`
	Date           string `json:"data"`
	StartTime      string `json:"horaInicio"`
	EndTime        string `json:"horaFim"`
	Status         string `json:"status"`
	Notes          string `json:"observacoes,omitempty"`
}

func newScheduleRequest(in models.ScheduleInput) scheduleRequest {
	return scheduleRequest{
		ProfessionalID: in.ProfessionalID,
		PatientID:      in.PatientID,
		Date:           in.Date,
		StartTime:      padSeconds(in.StartTime),
		EndTime:        padSeconds(in.EndTime),
		Status:         strings.ToUpper(in.Status),
		Notes:          in.Notes,
	}
}

// Incoming schedule may name times either way
type scheduleResponse struct {
	models.Schedule
	HoraInicio string `json:"horaInicio"`
	HoraFim    string `json:"horaFim"`
}

func (r scheduleResponse) schedule() models.Schedule {
	s := r.Schedule
	if s.StartTime == "" {
		s.StartTime = r.HoraInicio
	}
	if s.EndTime == "" {
		s.EndTime = r.HoraFim
	}
	return s
}

func schedules(rs []scheduleResponse) []models.Schedule {
	out := make([]models.Schedule, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.schedule())
	}
	return out
}

// HH:MM becomes HH:MM:00, anything else is kept
func padSeconds(t string) string {
	if len(t) == len("15:04") && t[2] == ':' {
		return t + ":00"
	}
	return t
}

func (s *SchedulesService) ByDate(ctx context.Context, date string) ([]models.Schedule, error) {
	var rs []scheduleResponse
	err := s.conn.do(ctx, http.MethodGet, "/escalas", query("data", date), nil, &rs)
	return schedules(rs), err
}

// ByProfessional returns schedules of the professional, from and to may be empty
func (s *SchedulesService) ByProfessional(ctx context.Context, professionalID int64, from string, to string) ([]models.Schedule, error) {
	var rs []scheduleResponse
	path := "/escalas/profissional/" + strconv.FormatInt(professionalID, 10)
	err := s.conn.do(ctx, http.MethodGet, path, query("dataInicio", from, "dataFim", to), nil, &rs)
	return schedules(rs), err
}

func (s *SchedulesService) Get(ctx context.Context, id int64) (models.Schedule, error) {
	var r scheduleResponse
	err := s.conn.do(ctx, http.MethodGet, idPath("/escalas", id), nil, nil, &r)
	return r.schedule(), err
}

// Create sends one record as is, validation and rotation belong to the schedule service
func (s *SchedulesService) Create(ctx context.Context, in models.ScheduleInput) (models.Schedule, error) {
	var r scheduleResponse
	err := s.conn.do(ctx, http.MethodPost, "/escalas", nil, newScheduleRequest(in), &r)
	return r.schedule(), err
}

func (s *SchedulesService) Update(ctx context.Context, id int64, in models.ScheduleInput) (models.Schedule, error) {
	var r scheduleResponse
	err := s.conn.do(ctx, http.MethodPut, idPath("/escalas", id), nil, newScheduleRequest(in), &r)
	return r.schedule(), err
}

func (s *SchedulesService) Delete(ctx context.Context, id int64) error {
	return s.conn.do(ctx, http.MethodDelete, idPath("/escalas", id), nil, nil, nil)
}
