package services

import (
	"context"
	"errors"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
)

type AuthService struct {
	API *api.Client
}

func NewAuthService(client *api.Client) *AuthService {
	return &AuthService{API: client}
}

// Login exchanges credentials for a token. The backend answers 401 for a bad
// password and 404 for an unknown email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	var resp models.AuthResponse
	err := s.API.Post(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp)
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return nil, ErrInvalidCredentials
	case errors.Is(err, api.ErrNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return &resp, nil
}
