package services

import (
	"context"
	"fmt"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/odontogram"
)

var ErrChartReadOnly = &InputError{Field: "status", Message: "Apenas dentistas podem editar o odontograma."}

type OdontogramService struct {
	API *api.Client
}

func NewOdontogramService(client *api.Client) *OdontogramService {
	return &OdontogramService{API: client}
}

// History returns every entry ever recorded for the patient.
func (s *OdontogramService) History(ctx context.Context, patientID int) ([]models.ToothRecord, error) {
	var records []models.ToothRecord
	if err := s.API.Get(ctx, idPath("/odontograma/paciente/%d/historico", patientID), nil, &records); err != nil {
		return nil, fmt.Errorf("odontogram history of patient %d: %w", patientID, err)
	}
	return records, nil
}

// ToothHistory returns one tooth's entries, newest first.
func (s *OdontogramService) ToothHistory(ctx context.Context, patientID, tooth int) ([]models.ToothRecord, error) {
	if !odontogram.ValidNumber(tooth) {
		return nil, invalid("numeroDente", "Dente inválido")
	}
	var records []models.ToothRecord
	if err := s.API.Get(ctx, idPath("/odontograma/paciente/%d/dente/%d", patientID, tooth), nil, &records); err != nil {
		return nil, fmt.Errorf("history of tooth %d: %w", tooth, err)
	}
	odontogram.SortNewestFirst(records)
	return records, nil
}

// Chart folds the full history into the current state of all 32 teeth.
func (s *OdontogramService) Chart(ctx context.Context, patientID int) (*odontogram.State, error) {
	records, err := s.History(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return odontogram.CurrentState(records), nil
}

// Record appends one entry on behalf of user. Only ADMIN and DENTISTA may
// write; the entry is attributed to the signed-in user.
func (s *OdontogramService) Record(ctx context.Context, user *models.User, req *models.ToothRecordRequest) (*models.ToothRecord, error) {
	if user == nil || !user.Role.CanEditChart() {
		return nil, ErrChartReadOnly
	}
	if req.PatientID <= 0 {
		return nil, invalid("pacienteId", "Selecione um paciente")
	}
	if !odontogram.ValidNumber(req.ToothNumber) {
		return nil, invalid("numeroDente", "Dente inválido")
	}
	if !req.Status.Valid() {
		return nil, invalid("status", "Selecione o status do dente")
	}
	req.DentistID = user.ID
	req.Procedure = strings.TrimSpace(req.Procedure)
	req.Notes = strings.TrimSpace(req.Notes)

	var rec models.ToothRecord
	if err := s.API.Post(ctx, "/odontograma", req, &rec); err != nil {
		return nil, fmt.Errorf("record tooth %d: %w", req.ToothNumber, err)
	}
	return &rec, nil
}
