package models

type Patient struct {
	ID                int      `json:"id"`
	Name              string   `json:"nome"`
	BirthDate         string   `json:"dataNascimento"`
	CPF               string   `json:"cpf,omitempty"`
	Phone             string   `json:"telefone,omitempty"`
	Email             string   `json:"email,omitempty"`
	Address           string   `json:"endereco,omitempty"`
	Notes             string   `json:"observacoes,omitempty"`
	RegisteredAt      string   `json:"dataCadastro,omitempty"`
	DeclaresIncomeTax bool     `json:"declaraIr"`
	Dentist           *User    `json:"dentistaResponsavel,omitempty"`
	DentistID         *int     `json:"dentistaResponsavelId,omitempty"`
	Father            *Patient `json:"pai,omitempty"`
	FatherID          *int     `json:"paiId,omitempty"`
	Mother            *Patient `json:"mae,omitempty"`
	MotherID          *int     `json:"maeId,omitempty"`
	Spouse            *Patient `json:"conjuge,omitempty"`
	SpouseID          *int     `json:"conjugeId,omitempty"`
}

// PatientRequest is the create/update body for /pacientes
type PatientRequest struct {
	Name              string `json:"nome"`
	BirthDate         string `json:"dataNascimento"`
	CPF               string `json:"cpf,omitempty"`
	Phone             string `json:"telefone,omitempty"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"endereco,omitempty"`
	Notes             string `json:"observacoes,omitempty"`
	DeclaresIncomeTax bool   `json:"declaraIr"`
	DentistID         *int   `json:"dentistaResponsavelId,omitempty"`
	FatherID          *int   `json:"paiId,omitempty"`
	MotherID          *int   `json:"maeId,omitempty"`
	SpouseID          *int   `json:"conjugeId,omitempty"`
}

// PatientRef is the compact {id, nome} shape embedded in odontogram records
type PatientRef struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}
