package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/validators"
)

type PaymentService struct {
	API *api.Client
}

func NewPaymentService(client *api.Client) *PaymentService {
	return &PaymentService{API: client}
}

func (s *PaymentService) list(ctx context.Context, path string, start, end string) ([]models.Payment, error) {
	var q url.Values
	if start != "" || end != "" {
		q = periodQuery(start, end)
	}
	var payments []models.Payment
	if err := s.API.Get(ctx, path, q, &payments); err != nil {
		return nil, fmt.Errorf("list payments %s: %w", path, err)
	}
	return payments, nil
}

func (s *PaymentService) All(ctx context.Context) ([]models.Payment, error) {
	return s.list(ctx, "/pagamentos", "", "")
}

func (s *PaymentService) ForPatient(ctx context.Context, patientID int) ([]models.Payment, error) {
	return s.list(ctx, idPath("/pagamentos/paciente/%d", patientID), "", "")
}

func (s *PaymentService) ForDentist(ctx context.Context, dentistID int) ([]models.Payment, error) {
	return s.list(ctx, idPath("/pagamentos/dentista/%d", dentistID), "", "")
}

func (s *PaymentService) ForDentistPeriod(ctx context.Context, dentistID int, start, end string) ([]models.Payment, error) {
	return s.list(ctx, idPath("/pagamentos/dentista/%d/periodo", dentistID), start, end)
}

func (s *PaymentService) Period(ctx context.Context, start, end string) ([]models.Payment, error) {
	return s.list(ctx, "/pagamentos/periodo", start, end)
}

func (s *PaymentService) ForVisit(ctx context.Context, visitID int) ([]models.Payment, error) {
	return s.list(ctx, idPath("/pagamentos/atendimento/%d", visitID), "", "")
}

// Visible returns the payments the user's list shows: dentists see their own.
func (s *PaymentService) Visible(ctx context.Context, user *models.User) ([]models.Payment, error) {
	var (
		payments []models.Payment
		err      error
	)
	if user.Role == models.RoleDentist {
		payments, err = s.ForDentist(ctx, user.ID)
	} else {
		payments, err = s.All(ctx)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].IssuedAt > payments[j].IssuedAt
	})
	return payments, nil
}

func (s *PaymentService) Get(ctx context.Context, id int) (*models.Payment, error) {
	var p models.Payment
	if err := s.API.Get(ctx, idPath("/pagamentos/%d", id), nil, &p); err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return &p, nil
}

func (s *PaymentService) Create(ctx context.Context, req *models.PaymentRequest) (*models.Payment, error) {
	if err := ValidatePayment(req); err != nil {
		return nil, err
	}
	var p models.Payment
	if err := s.API.Post(ctx, "/pagamentos", req, &p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &p, nil
}

func (s *PaymentService) Update(ctx context.Context, id int, req *models.PaymentRequest) (*models.Payment, error) {
	if err := ValidatePayment(req); err != nil {
		return nil, err
	}
	var p models.Payment
	if err := s.API.Put(ctx, idPath("/pagamentos/%d", id), req, &p); err != nil {
		return nil, fmt.Errorf("update payment %d: %w", id, err)
	}
	return &p, nil
}

// Delete removes a payment and, at the backend, all of its installments.
func (s *PaymentService) Delete(ctx context.Context, id int) error {
	if err := s.API.Delete(ctx, idPath("/pagamentos/%d", id)); err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	return nil
}

func ValidatePayment(req *models.PaymentRequest) error {
	if req.PatientID <= 0 {
		return invalid("pacienteId", "Selecione um paciente.")
	}
	if req.DentistID <= 0 {
		return invalid("dentistaId", "Selecione um dentista responsável.")
	}
	req.Total = validators.RoundCents(req.Total)
	if req.Total <= 0 {
		return invalid("valorTotal", "O valor total deve ser maior que zero.")
	}
	if !req.Method.Valid() {
		return invalid("metodoPagamento", "Selecione o método de pagamento.")
	}
	if req.Installed {
		if req.InstallmentCount < 2 {
			return invalid("numeroParcelas", "Para pagamentos parcelados, o número de parcelas deve ser no mínimo 2.")
		}
	} else {
		req.InstallmentCount = 0
	}
	return nil
}

// PaymentFilter narrows the payment list the way the list screen does.
type PaymentFilter struct {
	Term      string
	Method    models.PaymentMethod
	Installed string // "", "true" or "false"
}

func FilterPayments(payments []models.Payment, f PaymentFilter) []models.Payment {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	var out []models.Payment
	for _, p := range payments {
		if term != "" && !strings.Contains(strings.ToLower(p.PatientName()), term) {
			continue
		}
		if f.Method != "" && p.Method != f.Method {
			continue
		}
		if f.Installed != "" && p.Installed != (f.Installed == "true") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PaymentTotals sums a payment list. A payment paid in full at once counts as
// received; otherwise only PAGO installments do.
type PaymentTotals struct {
	Total    float64
	Received float64
	Pending  float64
}

func SumPayments(payments []models.Payment) PaymentTotals {
	var t PaymentTotals
	for _, p := range payments {
		t.Total += p.Total
		if !p.Installed || len(p.Installments) == 0 {
			t.Received += p.Total
			continue
		}
		for _, inst := range p.Installments {
			switch {
			case inst.Status == models.InstallmentPaid:
				t.Received += inst.Amount
			case inst.Status.Outstanding():
				t.Pending += inst.Amount
			}
		}
	}
	t.Total = validators.RoundCents(t.Total)
	t.Received = validators.RoundCents(t.Received)
	t.Pending = validators.RoundCents(t.Pending)
	return t
}

// PaymentBadge is the status pill of one payment row.
type PaymentBadge struct {
	Label string
	Tone  string // green, yellow or red
}

func BadgeFor(p *models.Payment) PaymentBadge {
	if !p.Installed || len(p.Installments) == 0 {
		return PaymentBadge{Label: "À Vista", Tone: "green"}
	}
	var open, late int
	for _, inst := range p.Installments {
		if inst.Status.Outstanding() {
			open++
		}
		if inst.Status == models.InstallmentOverdue {
			late++
		}
	}
	switch {
	case open == 0:
		return PaymentBadge{Label: "Pago", Tone: "green"}
	case late > 0:
		return PaymentBadge{Label: plural(late, "Atrasada"), Tone: "red"}
	}
	return PaymentBadge{Label: plural(open, "Pendente"), Tone: "yellow"}
}

func plural(n int, word string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, word)
	}
	return fmt.Sprintf("%d %s", n, word)
}
