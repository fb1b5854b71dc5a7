package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
)

type PatientService struct {
	API *api.Client
}

func NewPatientService(client *api.Client) *PatientService {
	return &PatientService{API: client}
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	if err := s.API.Get(ctx, "/pacientes", nil, &patients); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	sort.SliceStable(patients, func(i, j int) bool {
		return strings.ToLower(patients[i].Name) < strings.ToLower(patients[j].Name)
	})
	return patients, nil
}

func (s *PatientService) Get(ctx context.Context, id int) (*models.Patient, error) {
	var p models.Patient
	if err := s.API.Get(ctx, idPath("/pacientes/%d", id), nil, &p); err != nil {
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	return &p, nil
}

func (s *PatientService) Create(ctx context.Context, req *models.PatientRequest) (*models.Patient, error) {
	if err := ValidatePatient(req, timeutil.Now()); err != nil {
		return nil, err
	}
	var p models.Patient
	if err := s.API.Post(ctx, "/pacientes", req, &p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

func (s *PatientService) Update(ctx context.Context, id int, req *models.PatientRequest) (*models.Patient, error) {
	if err := ValidatePatient(req, timeutil.Now()); err != nil {
		return nil, err
	}
	var p models.Patient
	if err := s.API.Put(ctx, idPath("/pacientes/%d", id), req, &p); err != nil {
		return nil, fmt.Errorf("update patient %d: %w", id, err)
	}
	return &p, nil
}

func (s *PatientService) Delete(ctx context.Context, id int) error {
	if err := s.API.Delete(ctx, idPath("/pacientes/%d", id)); err != nil {
		return fmt.Errorf("delete patient %d: %w", id, err)
	}
	return nil
}

// ValidatePatient applies the form checks. Phone and email are only checked
// when filled; CPF and phone are normalized to digits.
func ValidatePatient(req *models.PatientRequest, now time.Time) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return invalid("nome", "Nome é obrigatório.")
	}
	if req.BirthDate == "" {
		return invalid("dataNascimento", "Data de Nascimento é obrigatória.")
	}
	birth, err := timeutil.ParseDate(req.BirthDate)
	if err != nil || birth.After(now) {
		return invalid("dataNascimento", "Data de Nascimento inválida.")
	}
	if req.CPF == "" {
		return invalid("cpf", "CPF é obrigatório.")
	}
	if !validators.ValidCPF(req.CPF) {
		return invalid("cpf", "CPF inválido. Verifique os números digitados.")
	}
	req.CPF = validators.Digits(req.CPF)
	if req.Phone != "" {
		if !validators.ValidPhone(req.Phone) {
			return invalid("telefone", "Telefone inválido.")
		}
		req.Phone = validators.Digits(req.Phone)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" && !validators.ValidEmail(req.Email) {
		return invalid("email", "Email inválido.")
	}
	return nil
}

// FilterPatients keeps patients whose name contains term, ignoring case.
func FilterPatients(patients []models.Patient, term string) []models.Patient {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return patients
	}
	digits := validators.Digits(term)
	var out []models.Patient
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			(digits != "" && digits == term && strings.Contains(validators.Digits(p.CPF), digits)) {
			out = append(out, p)
		}
	}
	return out
}
