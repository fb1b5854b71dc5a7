package services

import (
	"fmt"
	"net/url"
	"strconv"
)

// InputError is a problem with what the user typed. Its message is shown
// next to the form as is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}

var (
	ErrCredentialsRequired = &InputError{Field: "email", Message: "Informe email e senha."}
	ErrInvalidCredentials  = &InputError{Field: "senha", Message: "Email ou senha incorretos. Tente novamente."}
	ErrUserNotFound        = &InputError{Field: "email", Message: "Usuário não encontrado."}
)

func idPath(format string, ids ...int) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}

func periodQuery(start, end string) url.Values {
	return url.Values{"dataInicio": {start}, "dataFim": {end}}
}

func itoa(n int) string { return strconv.Itoa(n) }
