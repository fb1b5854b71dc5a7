package services

import (
	"errors"
	"testing"

	"odonto-console/internal/models"
)

func samplePayments() []models.Payment {
	return []models.Payment{
		{ID: 1, Patient: &models.Patient{Name: "Ana"}, Total: 200, Method: models.MethodPix},
		{ID: 2, Patient: &models.Patient{Name: "Bruno"}, Total: 300, Method: models.MethodCredit, Installed: true,
			Installments: []models.Installment{
				{Number: 1, Amount: 100, Status: models.InstallmentPaid},
				{Number: 2, Amount: 100, Status: models.InstallmentOverdue},
				{Number: 3, Amount: 100, Status: models.InstallmentPending},
			}},
		{ID: 3, Patient: &models.Patient{Name: "Carla"}, Total: 150, Method: models.MethodCredit, Installed: true,
			Installments: []models.Installment{
				{Number: 1, Amount: 75, Status: models.InstallmentPaid},
				{Number: 2, Amount: 75, Status: models.InstallmentReversed},
			}},
	}
}

func TestSumPayments(t *testing.T) {
	got := SumPayments(samplePayments())
	want := PaymentTotals{Total: 650, Received: 375, Pending: 275}
	if got != want {
		t.Errorf("SumPayments = %+v, want %+v", got, want)
	}
}

func TestBadgeFor(t *testing.T) {
	ps := samplePayments()
	tests := []struct {
		p    models.Payment
		want PaymentBadge
	}{
		{ps[0], PaymentBadge{"À Vista", "green"}},
		{ps[1], PaymentBadge{"1 Atrasada", "red"}},
		{ps[2], PaymentBadge{"1 Pendente", "yellow"}},
		{models.Payment{Installed: true, Installments: []models.Installment{{Status: models.InstallmentPaid}}}, PaymentBadge{"Pago", "green"}},
	}
	for i, tt := range tests {
		if got := BadgeFor(&tt.p); got != tt.want {
			t.Errorf("case %d: got %+v, want %+v", i, got, tt.want)
		}
	}
}

func TestFilterPayments(t *testing.T) {
	ps := samplePayments()
	if got := FilterPayments(ps, PaymentFilter{Method: models.MethodCredit}); len(got) != 2 {
		t.Errorf("method filter: %d", len(got))
	}
	if got := FilterPayments(ps, PaymentFilter{Installed: "false"}); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("installed filter: %v", got)
	}
	if got := FilterPayments(ps, PaymentFilter{Term: "car"}); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("term filter: %v", got)
	}
}

func TestValidatePayment(t *testing.T) {
	ok := &models.PaymentRequest{PatientID: 1, DentistID: 2, Total: 100.004, Method: models.MethodCash, InstallmentCount: 5}
	if err := ValidatePayment(ok); err != nil {
		t.Fatal(err)
	}
	if ok.Total != 100 || ok.InstallmentCount != 0 {
		t.Errorf("not normalized: %+v", ok)
	}

	tests := []struct {
		req   models.PaymentRequest
		field string
	}{
		{models.PaymentRequest{DentistID: 2, Total: 10, Method: models.MethodPix}, "pacienteId"},
		{models.PaymentRequest{PatientID: 1, Total: 10, Method: models.MethodPix}, "dentistaId"},
		{models.PaymentRequest{PatientID: 1, DentistID: 2, Method: models.MethodPix}, "valorTotal"},
		{models.PaymentRequest{PatientID: 1, DentistID: 2, Total: 10, Method: "CHEQUE"}, "metodoPagamento"},
		{models.PaymentRequest{PatientID: 1, DentistID: 2, Total: 10, Method: models.MethodPix, Installed: true, InstallmentCount: 1}, "numeroParcelas"},
	}
	for _, tt := range tests {
		var ie *InputError
		if err := ValidatePayment(&tt.req); !errors.As(err, &ie) || ie.Field != tt.field {
			t.Errorf("expected error on %s, got %v", tt.field, err)
		}
	}
}
