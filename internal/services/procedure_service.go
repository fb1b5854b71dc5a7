package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
)

type ProcedureService struct {
	API *api.Client
}

func NewProcedureService(client *api.Client) *ProcedureService {
	return &ProcedureService{API: client}
}

func (s *ProcedureService) List(ctx context.Context) ([]models.Procedure, error) {
	var procs []models.Procedure
	if err := s.API.Get(ctx, "/procedimentos", nil, &procs); err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	sort.SliceStable(procs, func(i, j int) bool {
		return strings.ToLower(procs[i].Name) < strings.ToLower(procs[j].Name)
	})
	return procs, nil
}

func (s *ProcedureService) Get(ctx context.Context, id int) (*models.Procedure, error) {
	var p models.Procedure
	if err := s.API.Get(ctx, idPath("/procedimentos/%d", id), nil, &p); err != nil {
		return nil, fmt.Errorf("get procedure %d: %w", id, err)
	}
	return &p, nil
}

// ForVisit lists the procedures performed during a visit.
func (s *ProcedureService) ForVisit(ctx context.Context, visitID int) ([]models.Procedure, error) {
	var procs []models.Procedure
	if err := s.API.Get(ctx, idPath("/procedimentos/atendimento/%d", visitID), nil, &procs); err != nil {
		return nil, fmt.Errorf("list procedures for visit %d: %w", visitID, err)
	}
	return procs, nil
}

func (s *ProcedureService) Create(ctx context.Context, req *models.ProcedureRequest) (*models.Procedure, error) {
	if err := ValidateProcedure(req); err != nil {
		return nil, err
	}
	var p models.Procedure
	if err := s.API.Post(ctx, "/procedimentos", req, &p); err != nil {
		return nil, fmt.Errorf("create procedure: %w", err)
	}
	return &p, nil
}

func (s *ProcedureService) Update(ctx context.Context, id int, req *models.ProcedureRequest) (*models.Procedure, error) {
	if err := ValidateProcedure(req); err != nil {
		return nil, err
	}
	var p models.Procedure
	if err := s.API.Put(ctx, idPath("/procedimentos/%d", id), req, &p); err != nil {
		return nil, fmt.Errorf("update procedure %d: %w", id, err)
	}
	return &p, nil
}

func (s *ProcedureService) Delete(ctx context.Context, id int) error {
	if err := s.API.Delete(ctx, idPath("/procedimentos/%d", id)); err != nil {
		return fmt.Errorf("delete procedure %d: %w", id, err)
	}
	return nil
}

func ValidateProcedure(req *models.ProcedureRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return invalid("nome", "Nome do procedimento é obrigatório")
	}
	if req.Price < 0 {
		return invalid("preco", "Preço não pode ser negativo")
	}
	return nil
}
