package models

type Appointment struct {
	ID               int64  `json:"id" yaml:"id"`
	PatientID        int64  `json:"pacienteId" yaml:"pacienteId"`
	ProfessionalID   int64  `json:"profissionalId" yaml:"profissionalId"`
	PatientName      string `json:"nomePaciente,omitempty" yaml:"nomePaciente,omitempty"`
	ProfessionalName string `json:"nomeProfissional,omitempty" yaml:"nomeProfissional,omitempty"`
	Date             string `json:"data" yaml:"data"`
	Time             string `json:"horario,omitempty" yaml:"horario,omitempty"`
	StartTime        string `json:"horaInicio,omitempty" yaml:"horaInicio,omitempty"`
	EndTime          string `json:"horaFim,omitempty" yaml:"horaFim,omitempty"`
	Status           string `json:"status" yaml:"status"`
	Kind             string `json:"tipo,omitempty" yaml:"tipo,omitempty"`
	Modality         string `json:"modalidade,omitempty" yaml:"modalidade,omitempty"`
	Specialty        string `json:"especialidade,omitempty" yaml:"especialidade,omitempty"`
	Notes            string `json:"observacoes,omitempty" yaml:"observacoes,omitempty"`
}

type AppointmentInput struct {
	PatientID        int64  `json:"pacienteId" validate:"required"`
	ProfessionalID   int64  `json:"profissionalId,omitempty"`
	ProfessionalName string `json:"nomeProfissional,omitempty"`
	Date             string `json:"data" validate:"required,date"`
	Time             string `json:"horario,omitempty" validate:"omitempty,timeofday"`
	StartTime        string `json:"horaInicio,omitempty" validate:"omitempty,timeofday"`
	EndTime          string `json:"horaFim,omitempty" validate:"omitempty,timeofday"`
	Status           string `json:"status,omitempty"`
	Kind             string `json:"tipo,omitempty"`
	Modality         string `json:"modalidade,omitempty"`
	Specialty        string `json:"especialidade,omitempty"`
	Notes            string `json:"observacoes,omitempty"`
}
