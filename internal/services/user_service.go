package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/validators"
)

// MinPasswordLength matches the backend's account rule.
const MinPasswordLength = 6

var errShortPassword = invalid("senha", fmt.Sprintf("A senha deve ter no mínimo %d caracteres.", MinPasswordLength))

type UserService struct {
	API *api.Client
}

func NewUserService(client *api.Client) *UserService {
	return &UserService{API: client}
}

func (s *UserService) list(ctx context.Context, path string) ([]models.User, error) {
	var users []models.User
	if err := s.API.Get(ctx, path, nil, &users); err != nil {
		return nil, fmt.Errorf("list users %s: %w", path, err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	return users, nil
}

// Active lists active staff only.
func (s *UserService) Active(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, "/usuarios")
}

// All includes inactive accounts.
func (s *UserService) All(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, "/usuarios/todos")
}

func (s *UserService) Dentists(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, "/usuarios/dentistas")
}

func (s *UserService) Receptionists(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, "/usuarios/recepcionistas")
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.API.Get(ctx, idPath("/usuarios/%d", id), nil, &u); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateAccount(req.Name, req.Email, req.Role); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, invalid("senha", "Senha é obrigatória para novos usuários.")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, errShortPassword
	}
	var u models.User
	if err := s.API.Post(ctx, "/usuarios", req, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// Update edits an account; an empty password keeps the current one.
func (s *UserService) Update(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateAccount(req.Name, req.Email, req.Role); err != nil {
		return nil, err
	}
	if req.Password != "" && len(req.Password) < MinPasswordLength {
		return nil, errShortPassword
	}
	var u models.User
	if err := s.API.Put(ctx, idPath("/usuarios/%d", id), req, &u); err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return &u, nil
}

func (s *UserService) ToggleActive(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.API.Patch(ctx, idPath("/usuarios/%d/toggle-ativo", id), nil, nil, &u); err != nil {
		return nil, fmt.Errorf("toggle user %d: %w", id, err)
	}
	return &u, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.API.Delete(ctx, idPath("/usuarios/%d", id)); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func validateAccount(name, email string, role models.Role) error {
	if name == "" {
		return invalid("nome", "Nome é obrigatório")
	}
	if !validators.ValidEmail(email) {
		return invalid("email", "Email inválido")
	}
	if !role.Valid() {
		return invalid("cargo", "Selecione o cargo")
	}
	return nil
}

// UserFilter mirrors the list screen's filters. Active is "", "true" or "false".
type UserFilter struct {
	Term   string
	Role   models.Role
	Active string
}

func FilterUsers(users []models.User, f UserFilter) []models.User {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	var out []models.User
	for _, u := range users {
		if term != "" && !strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != "" && u.Active != (f.Active == "true") {
			continue
		}
		out = append(out, u)
	}
	return out
}
