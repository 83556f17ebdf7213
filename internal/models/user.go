package models

type User struct {
	ID       int64    `json:"id" yaml:"id"`
	Name     string   `json:"nome" yaml:"nome"`
	Email    string   `json:"email" yaml:"email"`
	Phone    string   `json:"telefone,omitempty" yaml:"telefone,omitempty"`
	Roles    []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Avatar   string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	IsActive *bool    `json:"ativo,omitempty" yaml:"ativo,omitempty"`
}

// Credentials entered by a user to log in
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Data entered by a user to create an account
type RegisterInput struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Phone    string `validate:"omitempty,phone"`
	Roles    []string
}

type ProfileInput struct {
	Name  string `json:"nome" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"telefone,omitempty" validate:"omitempty,phone"`
}
