package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnreachable means no response was received from the backend.
	ErrUnreachable = errors.New("não foi possível conectar ao servidor")
	// ErrSessionExpired is returned for any 401; the persisted session is already gone.
	ErrSessionExpired = errors.New("sessão expirada, faça login novamente")
	ErrNotFound       = errors.New("recurso não encontrado")
	ErrServer         = errors.New("erro inesperado no servidor")
)

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend %d", e.Status)
}

// Is maps statuses onto the sentinel errors so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSessionExpired:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// Validation reports whether the backend rejected the input with a message worth showing.
func (e *Error) Validation() bool {
	return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusUnauthorized &&
		e.Status != http.StatusNotFound && e.Message != ""
}

// Message turns any error from this package into text fit for the screen.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnreachable):
		return ErrUnreachable.Error()
	case errors.Is(err, ErrSessionExpired):
		return ErrSessionExpired.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Validation() {
		return apiErr.Message
	}
	return "Ocorreu um erro inesperado. Tente novamente."
}

// errorMessage pulls a human message out of a backend error body. Spring-style
// bodies carry "message"; some handlers use "erro" or "error".
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "mensagem", "erro", "error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 300 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
