package models

type Patient struct {
	ID            int64  `json:"id" yaml:"id"`
	Name          string `json:"nome" yaml:"nome"`
	BirthDate     string `json:"dataNascimento" yaml:"dataNascimento"`
	CPF           string `json:"cpf" yaml:"cpf"`
	RG            string `json:"rg" yaml:"rg"`
	Phone         string `json:"telefone" yaml:"telefone"`
	Email         string `json:"email" yaml:"email"`
	Address       string `json:"endereco" yaml:"endereco"`
	Complement    string `json:"complemento" yaml:"complemento"`
	District      string `json:"bairro" yaml:"bairro"`
	City          string `json:"cidade" yaml:"cidade"`
	State         string `json:"estado" yaml:"estado"`
	ZipCode       string `json:"cep" yaml:"cep"`
	GuardianName  string `json:"nomeResponsavel" yaml:"nomeResponsavel"`
	GuardianPhone string `json:"telefoneResponsavel" yaml:"telefoneResponsavel"`
	Notes         string `json:"observacoes" yaml:"observacoes"`
	Status        string `json:"status" yaml:"status"`
	CreatedAt     string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

type PatientInput struct {
	Name          string `json:"nome" validate:"required,min=2"`
	BirthDate     string `json:"dataNascimento" validate:"required,date"`
	CPF           string `json:"cpf" validate:"required,cpf"`
	RG            string `json:"rg"`
	Phone         string `json:"telefone" validate:"required,phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"endereco"`
	Complement    string `json:"complemento"`
	District      string `json:"bairro"`
	City          string `json:"cidade"`
	State         string `json:"estado"`
	ZipCode       string `json:"cep"`
	GuardianName  string `json:"nomeResponsavel"`
	GuardianPhone string `json:"telefoneResponsavel" validate:"omitempty,phone"`
	Notes         string `json:"observacoes"`
	Status        string `json:"status" validate:"required"`
}

// Page is the paginated envelope returned by list endpoints
type Page[T any] struct {
	Content       []T `json:"content" yaml:"content"`
	TotalElements int `json:"totalElements,omitempty" yaml:"totalElements,omitempty"`
	TotalPages    int `json:"totalPages,omitempty" yaml:"totalPages,omitempty"`
	Number        int `json:"number,omitempty" yaml:"number,omitempty"`
	Size          int `json:"size,omitempty" yaml:"size,omitempty"`
}
