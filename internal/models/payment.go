package models

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "DINHEIRO"
	MethodDebit    PaymentMethod = "CARTAO_DEBITO"
	MethodCredit   PaymentMethod = "CARTAO_CREDITO"
	MethodPix      PaymentMethod = "PIX"
	MethodTransfer PaymentMethod = "TRANSFERENCIA"
)

var methodLabels = map[PaymentMethod]string{
	MethodCash:     "Dinheiro",
	MethodDebit:    "Cartão de Débito",
	MethodCredit:   "Cartão de Crédito",
	MethodPix:      "PIX",
	MethodTransfer: "Transferência",
}

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodDebit, MethodCredit, MethodPix, MethodTransfer}
}

func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

func (m PaymentMethod) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

type InstallmentStatus string

const (
	InstallmentPending  InstallmentStatus = "PENDENTE"
	InstallmentPaid     InstallmentStatus = "PAGO"
	InstallmentOverdue  InstallmentStatus = "ATRASADO"
	InstallmentReversed InstallmentStatus = "ESTORNADO"
)

var installmentLabels = map[InstallmentStatus]string{
	InstallmentPending:  "Pendente",
	InstallmentPaid:     "Pago",
	InstallmentOverdue:  "Atrasado",
	InstallmentReversed: "Estornado",
}

func (s InstallmentStatus) Label() string {
	if l, ok := installmentLabels[s]; ok {
		return l
	}
	return string(s)
}

// Outstanding reports whether the amount still counts as owed. A reversed
// installment is owed again.
func (s InstallmentStatus) Outstanding() bool {
	return s == InstallmentPending || s == InstallmentOverdue || s == InstallmentReversed
}

// Unpaid reports whether the installment is still awaiting its first payment.
func (s InstallmentStatus) Unpaid() bool {
	return s == InstallmentPending || s == InstallmentOverdue
}

func (s InstallmentStatus) CanPay() bool     { return s.Outstanding() }
func (s InstallmentStatus) CanReverse() bool { return s == InstallmentPaid }

type Payment struct {
	ID               int           `json:"id"`
	Patient          *Patient      `json:"paciente,omitempty"`
	PatientID        int           `json:"pacienteId,omitempty"`
	Dentist          *User         `json:"dentista,omitempty"`
	DentistID        int           `json:"dentistaId,omitempty"`
	Visit            *Visit        `json:"atendimento,omitempty"`
	VisitID          *int          `json:"atendimentoId,omitempty"`
	Total            float64       `json:"valorTotal"`
	Method           PaymentMethod `json:"metodoPagamento"`
	Installed        bool          `json:"parcelado"`
	InstallmentCount int           `json:"numeroParcelas,omitempty"`
	IssuedAt         string        `json:"dataLancamento"`
	Notes            string        `json:"observacoes,omitempty"`
	Installments     []Installment `json:"parcelas,omitempty"`
}

// PatientName tolerates payments serialized without the nested patient.
func (p *Payment) PatientName() string {
	if p.Patient != nil {
		return p.Patient.Name
	}
	return ""
}

type PaymentRequest struct {
	PatientID        int           `json:"pacienteId"`
	DentistID        int           `json:"dentistaId"`
	VisitID          *int          `json:"atendimentoId,omitempty"`
	Total            float64       `json:"valorTotal"`
	Method           PaymentMethod `json:"metodoPagamento"`
	Installed        bool          `json:"parcelado"`
	InstallmentCount int           `json:"numeroParcelas,omitempty"`
	Notes            string        `json:"observacoes,omitempty"`
}

type Installment struct {
	ID        int               `json:"id"`
	Payment   *Payment          `json:"pagamento,omitempty"`
	PaymentID int               `json:"pagamentoId,omitempty"`
	Number    int               `json:"numeroParcela"`
	Amount    float64           `json:"valorParcela"`
	DueDate   string            `json:"dataVencimento"`
	PaidAt    string            `json:"dataPagamento,omitempty"`
	Status    InstallmentStatus `json:"status"`
	Notes     string            `json:"observacoes,omitempty"`
}

type InstallmentUpdateRequest struct {
	Amount  float64 `json:"valorParcela"`
	DueDate string  `json:"dataVencimento"`
	Notes   string  `json:"observacoes,omitempty"`
}
