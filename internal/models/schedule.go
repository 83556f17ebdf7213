package models

// Statuses of schedules and appointments known to the backend
const (
	StatusOpen      = "ABERTA"
	StatusCovered   = "COBERTA"
	StatusCancelled = "CANCELADA"
	StatusComplete  = "COMPLETA"
	StatusPartial   = "PARCIAL"
	StatusPending   = "PENDENTE"
	StatusConfirmed = "CONFIRMADO"
	StatusDone      = "REALIZADO"
)

// Schedule is a work shift of a professional at a patient's home
type Schedule struct {
	ID               int64  `json:"id" yaml:"id"`
	ProfessionalID   int64  `json:"profissionalId" yaml:"profissionalId"`
	PatientID        int64  `json:"pacienteId" yaml:"pacienteId"`
	ProfessionalName string `json:"nomeProfissional,omitempty" yaml:"nomeProfissional,omitempty"`
	PatientName      string `json:"nomePaciente,omitempty" yaml:"nomePaciente,omitempty"`
	Date             string `json:"data" yaml:"data"`
	StartTime        string `json:"horarioInicio" yaml:"horarioInicio"`
	EndTime          string `json:"horarioFim" yaml:"horarioFim"`
	Status           string `json:"status" yaml:"status"`
	Notes            string `json:"observacoes,omitempty" yaml:"observacoes,omitempty"`
}

// ScheduleInput is the payload to create or update a schedule
type ScheduleInput struct {
	ProfessionalID int64  `json:"profissionalId" validate:"required"`
	PatientID      int64  `json:"pacienteId" validate:"required"`
	Date           string `json:"data" validate:"required,date"`
	StartTime      string `json:"horarioInicio" validate:"required,timeofday"`
	EndTime        string `json:"horarioFim" validate:"required,timeofday,nefield=StartTime"`
	Status         string `json:"status" validate:"required"`
	Notes          string `json:"observacoes,omitempty"`
}
