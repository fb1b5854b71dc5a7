package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"odonto-console/internal/models"
)

func TestValidatePatient(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	valid := func() *models.PatientRequest {
		return &models.PatientRequest{Name: " Maria ", BirthDate: "1990-04-12", CPF: "529.982.247-25"}
	}

	tests := []struct {
		name  string
		edit  func(r *models.PatientRequest)
		field string
	}{
		{"ok", func(r *models.PatientRequest) {}, ""},
		{"missing name", func(r *models.PatientRequest) { r.Name = "  " }, "nome"},
		{"missing birth date", func(r *models.PatientRequest) { r.BirthDate = "" }, "dataNascimento"},
		{"future birth date", func(r *models.PatientRequest) { r.BirthDate = "2030-01-01" }, "dataNascimento"},
		{"missing cpf", func(r *models.PatientRequest) { r.CPF = "" }, "cpf"},
		{"placeholder cpf", func(r *models.PatientRequest) { r.CPF = "123.456.789-09" }, "cpf"},
		{"bad phone", func(r *models.PatientRequest) { r.Phone = "1234" }, "telefone"},
		{"bad email", func(r *models.PatientRequest) { r.Email = "maria@" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.edit(req)
			err := ValidatePatient(req, now)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.CPF != "52998224725" || req.Name != "Maria" {
					t.Errorf("request not normalized: %+v", req)
				}
				return
			}
			var ie *InputError
			if !errors.As(err, &ie) || ie.Field != tt.field {
				t.Errorf("expected input error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestPatientService_CreateDoesNotCallBackendOnInvalidInput(t *testing.T) {
	fb, client := newFakeBackend(t)
	svc := NewPatientService(client)

	if _, err := svc.Create(context.Background(), &models.PatientRequest{Name: "X"}); err == nil {
		t.Fatal("expected validation error")
	}
	if n := fb.count(); n != 0 {
		t.Errorf("backend called %d times", n)
	}
}

func TestPatientService_ListSortsByName(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("GET", "/pacientes", http.StatusOK, `[{"id":1,"nome":"zeca"},{"id":2,"nome":"Ana"},{"id":3,"nome":"bruno"}]`)

	got, err := NewPatientService(client).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Name != "Ana" || got[1].Name != "bruno" || got[2].Name != "zeca" {
		t.Errorf("unexpected order %v", got)
	}
}

func TestFilterPatients(t *testing.T) {
	patients := []models.Patient{
		{ID: 1, Name: "Maria Souza", CPF: "52998224725"},
		{ID: 2, Name: "João Lima", CPF: "11144477735"},
	}

	if got := FilterPatients(patients, "souza"); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("name search: %v", got)
	}
	if got := FilterPatients(patients, "111444"); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("cpf search: %v", got)
	}
	if got := FilterPatients(patients, ""); len(got) != 2 {
		t.Errorf("empty term should keep all, got %d", len(got))
	}
}
