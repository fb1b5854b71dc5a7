package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
)

type InstallmentService struct {
	API *api.Client
}

func NewInstallmentService(client *api.Client) *InstallmentService {
	return &InstallmentService{API: client}
}

func (s *InstallmentService) list(ctx context.Context, path string) ([]models.Installment, error) {
	var items []models.Installment
	if err := s.API.Get(ctx, path, nil, &items); err != nil {
		return nil, fmt.Errorf("list installments %s: %w", path, err)
	}
	return items, nil
}

func (s *InstallmentService) All(ctx context.Context) ([]models.Installment, error) {
	return s.list(ctx, "/parcelas")
}

// ForPayment returns a payment's installments ordered by number.
func (s *InstallmentService) ForPayment(ctx context.Context, paymentID int) ([]models.Installment, error) {
	items, err := s.list(ctx, idPath("/parcelas/pagamento/%d", paymentID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	return items, nil
}

// PendingForPatient is the backend's open-installment list for a patient.
func (s *InstallmentService) PendingForPatient(ctx context.Context, patientID int) ([]models.Installment, error) {
	return s.list(ctx, idPath("/parcelas/paciente/%d/pendentes", patientID))
}

func (s *InstallmentService) Get(ctx context.Context, id int) (*models.Installment, error) {
	var inst models.Installment
	if err := s.API.Get(ctx, idPath("/parcelas/%d", id), nil, &inst); err != nil {
		return nil, fmt.Errorf("get installment %d: %w", id, err)
	}
	return &inst, nil
}

func (s *InstallmentService) Pay(ctx context.Context, id int) (*models.Installment, error) {
	var inst models.Installment
	if err := s.API.Patch(ctx, idPath("/parcelas/%d/pagar", id), nil, nil, &inst); err != nil {
		return nil, fmt.Errorf("pay installment %d: %w", id, err)
	}
	return &inst, nil
}

// Reverse undoes a payment; the amount is owed again.
func (s *InstallmentService) Reverse(ctx context.Context, id int) (*models.Installment, error) {
	var inst models.Installment
	if err := s.API.Patch(ctx, idPath("/parcelas/%d/estornar", id), nil, nil, &inst); err != nil {
		return nil, fmt.Errorf("reverse installment %d: %w", id, err)
	}
	return &inst, nil
}

func (s *InstallmentService) ReverseAll(ctx context.Context, paymentID int) ([]models.Installment, error) {
	var items []models.Installment
	if err := s.API.Patch(ctx, idPath("/parcelas/pagamento/%d/estornar-todas", paymentID), nil, nil, &items); err != nil {
		return nil, fmt.Errorf("reverse installments of payment %d: %w", paymentID, err)
	}
	return items, nil
}

func (s *InstallmentService) Update(ctx context.Context, id int, req *models.InstallmentUpdateRequest) (*models.Installment, error) {
	req.Amount = validators.RoundCents(req.Amount)
	if req.Amount <= 0 {
		return nil, invalid("valorParcela", "Valor da parcela deve ser maior que zero")
	}
	if _, err := timeutil.ParseDate(req.DueDate); err != nil {
		return nil, invalid("dataVencimento", "Data de vencimento inválida")
	}
	req.Notes = strings.TrimSpace(req.Notes)

	var inst models.Installment
	if err := s.API.Put(ctx, idPath("/parcelas/%d", id), req, &inst); err != nil {
		return nil, fmt.Errorf("update installment %d: %w", id, err)
	}
	return &inst, nil
}

// PendingTotal sums the installments still owed: PENDENTE, ATRASADO and ESTORNADO.
func PendingTotal(items []models.Installment) float64 {
	var total float64
	for _, inst := range items {
		if inst.Status.Outstanding() {
			total += inst.Amount
		}
	}
	return validators.RoundCents(total)
}

// PaidTotal sums the PAGO installments.
func PaidTotal(items []models.Installment) float64 {
	var total float64
	for _, inst := range items {
		if inst.Status == models.InstallmentPaid {
			total += inst.Amount
		}
	}
	return validators.RoundCents(total)
}

// HasPaid reports whether any installment can be reversed.
func HasPaid(items []models.Installment) bool {
	for _, inst := range items {
		if inst.Status.CanReverse() {
			return true
		}
	}
	return false
}
