package models

// Procedure is an entry of the clinic's procedure catalog
type Procedure struct {
	ID          int     `json:"id"`
	Name        string  `json:"nome"`
	Description string  `json:"descricao,omitempty"`
	Price       float64 `json:"preco"`
	Notes       string  `json:"observacoes,omitempty"`
}

type ProcedureRequest struct {
	Name        string  `json:"nome"`
	Description string  `json:"descricao,omitempty"`
	Price       float64 `json:"preco"`
	Notes       string  `json:"observacoes,omitempty"`
}
