package models

// Specialty of professionals who may be put on 12x36 schedules
const SpecialtyNursingTechnician = "Técnico de Enfermagem"

type Professional struct {
	ID                   int64   `json:"id" yaml:"id"`
	Name                 string  `json:"nome" yaml:"nome"`
	Email                string  `json:"email" yaml:"email"`
	Phone                string  `json:"telefone" yaml:"telefone"`
	CPF                  *string `json:"cpf" yaml:"cpf,omitempty"`
	Specialty            string  `json:"especialidade" yaml:"especialidade"`
	ProfessionalRegistry string  `json:"registroProfissional" yaml:"registroProfissional"`
	Status               string  `json:"status" yaml:"status"`
	UserID               *int64  `json:"userId" yaml:"userId,omitempty"`
	CreatedAt            string  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt            *string `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

type ProfessionalInput struct {
	Name                 string `json:"nome" validate:"required,min=2"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"telefone" validate:"required,phone"`
	CPF                  string `json:"cpf,omitempty" validate:"omitempty,cpf"`
	Specialty            string `json:"especialidade" validate:"required"`
	ProfessionalRegistry string `json:"registroProfissional" validate:"required"`
	Status               string `json:"status" validate:"required"`
}
