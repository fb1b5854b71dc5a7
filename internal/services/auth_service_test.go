package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestAuthService_Login(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("POST", "/auth/login", http.StatusOK,
		`{"token":"abc","tipo":"Bearer","usuario":{"id":3,"nome":"Rita","email":"rita@clinica.com","cargo":"RECEPCIONISTA","ativo":true}}`)
	svc := NewAuthService(client)

	resp, err := svc.Login(context.Background(), " rita@clinica.com ", "segredo")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "abc" || resp.User.Role != "RECEPCIONISTA" {
		t.Errorf("unexpected response %+v", resp)
	}
	_, body := fb.last()
	if body["email"] != "rita@clinica.com" || body["senha"] != "segredo" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestAuthService_LoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"wrong password", http.StatusUnauthorized, ErrInvalidCredentials},
		{"unknown email", http.StatusNotFound, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, client := newFakeBackend(t)
			fb.json("POST", "/auth/login", tt.status, `{"message":"x"}`)
			_, err := NewAuthService(client).Login(context.Background(), "a@b.com", "pw")
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	_, client := newFakeBackend(t)
	if _, err := NewAuthService(client).Login(context.Background(), "", "pw"); !errors.Is(err, ErrCredentialsRequired) {
		t.Errorf("empty email: got %v", err)
	}
}
