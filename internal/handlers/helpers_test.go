package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
)

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestFormMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234,56", 1234.56},
		{"1234.56", 1234.56},
		{"R$ 150,00", 150},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		r := formRequest(url.Values{"valor": {tt.in}})
		if got := formMoney(r, "valor"); got != tt.want {
			t.Errorf("formMoney(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormOptionalInt(t *testing.T) {
	r := formRequest(url.Values{"a": {"12"}, "b": {"0"}, "c": {"x"}})
	if got := formOptionalInt(r, "a"); got == nil || *got != 12 {
		t.Errorf("a = %v", got)
	}
	for _, key := range []string{"b", "c", "missing"} {
		if got := formOptionalInt(r, key); got != nil {
			t.Errorf("%s = %d, want nil", key, *got)
		}
	}
}

func TestRedirectAddsNotice(t *testing.T) {
	tests := []struct {
		path, notice, want string
	}{
		{"/pacientes", "salvo", "/pacientes?ok=salvo"},
		{"/odontograma?paciente=5", "registrado", "/odontograma?paciente=5&ok=registrado"},
		{"/pagamentos", "", "/pagamentos"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		redirect(rec, httptest.NewRequest(http.MethodPost, "/", nil), tt.path, tt.notice)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != tt.want {
			t.Errorf("Location = %q, want %q", loc, tt.want)
		}
	}
}

func TestBackToRejectsForeignTargets(t *testing.T) {
	tests := []struct {
		back, want string
	}{
		{"/pacientes/3", "/pacientes/3"},
		{"//evil.example", "/atendimentos"},
		{"https://evil.example", "/atendimentos"},
		{"", "/atendimentos"},
	}
	for _, tt := range tests {
		r := formRequest(url.Values{"volta": {tt.back}})
		if got := backTo(r, "/atendimentos"); got != tt.want {
			t.Errorf("backTo(%q) = %q, want %q", tt.back, got, tt.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", &services.InputError{Field: "nome", Message: "Nome é obrigatório"}, http.StatusUnprocessableEntity},
		{"wrapped input", fmt.Errorf("save: %w", services.ErrChartReadOnly), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get patient 9: %w", api.ErrNotFound), http.StatusNotFound},
		{"unreachable", api.ErrUnreachable, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaymentPath(t *testing.T) {
	tests := []struct {
		name string
		inst models.Installment
		form url.Values
		want string
	}{
		{"nested payment", models.Installment{Payment: &models.Payment{ID: 4}, PaymentID: 9}, nil, "/pagamentos/4"},
		{"payment id", models.Installment{PaymentID: 9}, nil, "/pagamentos/9"},
		{"form field", models.Installment{}, url.Values{"pagamento": {"11"}}, "/pagamentos/11"},
		{"fallback", models.Installment{}, nil, "/pagamentos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.form == nil {
				tt.form = url.Values{}
			}
			if got := paymentPath(&tt.inst, formRequest(tt.form)); got != tt.want {
				t.Errorf("paymentPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, timeutil.BRT)
	tests := []struct {
		name string
		inst models.Installment
		want bool
	}{
		{"pending past due", models.Installment{Status: models.InstallmentPending, DueDate: "2025-03-09"}, true},
		{"pending due today", models.Installment{Status: models.InstallmentPending, DueDate: "2025-03-10"}, false},
		{"overdue status", models.Installment{Status: models.InstallmentOverdue, DueDate: "2025-01-01"}, true},
		{"paid", models.Installment{Status: models.InstallmentPaid, DueDate: "2025-01-01"}, false},
		{"reversed", models.Installment{Status: models.InstallmentReversed, DueDate: "2025-01-01"}, false},
		{"bad date", models.Installment{Status: models.InstallmentPending, DueDate: "ontem"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overdue(tt.inst, now); got != tt.want {
				t.Errorf("Overdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthGrid(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, timeutil.BRT)

	weeks := MonthGrid(time.Date(2025, 3, 1, 0, 0, 0, 0, timeutil.BRT), now, map[string]int{"2025-03-14": 3})
	if len(weeks) != 6 {
		t.Fatalf("March 2025 spans %d weeks, want 6", len(weeks))
	}
	first := weeks[0][0]
	if first.Date.Format(timeutil.DateLayout) != "2025-02-23" || first.InMonth {
		t.Errorf("grid starts on %s (in month %v)", first.Date.Format(timeutil.DateLayout), first.InMonth)
	}
	var today *CalendarDay
	for _, week := range weeks {
		if len(week) != 7 {
			t.Fatalf("week has %d days", len(week))
		}
		for i := range week {
			if week[i].Today {
				today = &week[i]
			}
		}
	}
	if today == nil || today.Date.Day() != 14 || today.Count != 3 {
		t.Errorf("today cell = %+v", today)
	}

	// February 2026 starts on a Sunday and fits four rows exactly
	feb := MonthGrid(time.Date(2026, 2, 1, 0, 0, 0, 0, timeutil.BRT), now, nil)
	if len(feb) != 4 {
		t.Errorf("February 2026 spans %d weeks, want 4", len(feb))
	}
}

func TestDateOnly(t *testing.T) {
	if got := dateOnly("2025-03-10T14:30:00"); got != "2025-03-10" {
		t.Errorf("dateOnly = %q", got)
	}
	if got := dateOnly("2025"); got != "2025" {
		t.Errorf("dateOnly short = %q", got)
	}
}
