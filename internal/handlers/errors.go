package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"odonto-console/internal/api"
	"odonto-console/internal/middleware"
	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/session"
)

// Base is embedded by every page handler.
type Base struct {
	Pages  *PageHandler
	Guard  *middleware.Guard
	Logger zerolog.Logger
}

func NewBase(pages *PageHandler, guard *middleware.Guard, logger zerolog.Logger) *Base {
	return &Base{Pages: pages, Guard: guard, Logger: logger}
}

// expired sends the browser back to /login when the backend rejected the
// token. The record is already gone by the time the error surfaces.
func (b *Base) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrSessionExpired) {
		return false
	}
	b.Guard.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}

// message turns err into the text shown on screen. Unexpected errors are logged.
func (b *Base) message(r *http.Request, err error) string {
	var input *services.InputError
	if errors.As(err, &input) {
		return input.Message
	}
	var apiErr *api.Error
	known := errors.Is(err, api.ErrUnreachable) || errors.Is(err, api.ErrNotFound) ||
		(errors.As(err, &apiErr) && apiErr.Validation())
	if !known {
		b.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	return api.Message(err)
}

// fail renders the error page for a screen that could not load.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if b.expired(w, r, err) {
		return
	}
	p := NewPage(r, "Erro", "")
	p.Error = b.message(r, err)
	b.Pages.Render(w, statusFor(err), "error.html", p)
}

// form re-renders a form with the user's values and the error next to it.
func (b *Base) form(w http.ResponseWriter, r *http.Request, name string, p *Page, err error) {
	if b.expired(w, r, err) {
		return
	}
	p.Error = b.message(r, err)
	b.Pages.Render(w, statusFor(err), name, p)
}

func (b *Base) render(w http.ResponseWriter, name string, p *Page) {
	b.Pages.Render(w, http.StatusOK, name, p)
}

// Confirm is the data of the confirmation step before a destructive action.
type Confirm struct {
	Heading string
	Message string
	Action  string
	Cancel  string
	Button  string
}

func (b *Base) confirm(w http.ResponseWriter, r *http.Request, active string, c Confirm) {
	p := NewPage(r, c.Heading, active)
	p.Data = c
	b.render(w, "confirm.html", p)
}

func statusFor(err error) int {
	var input *services.InputError
	var apiErr *api.Error
	switch {
	case errors.As(err, &input):
		return http.StatusUnprocessableEntity
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrUnreachable):
		return http.StatusBadGateway
	case errors.As(err, &apiErr) && apiErr.Validation():
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func currentUser(r *http.Request) *models.User {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	return s.User
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, api.ErrNotFound
	}
	return id, nil
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return n
}

func formOptionalInt(r *http.Request, key string) *int {
	n := formInt(r, key)
	if n <= 0 {
		return nil
	}
	return &n
}

// formMoney accepts "1.234,56", "1234,56" and "1234.56".
func formMoney(r *http.Request, key string) float64 {
	v := strings.TrimSpace(r.FormValue(key))
	v = strings.TrimPrefix(v, "R$")
	v = strings.TrimSpace(v)
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func formBool(r *http.Request, key string) bool {
	switch r.FormValue(key) {
	case "on", "true", "1":
		return true
	}
	return false
}

func redirect(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "ok=" + notice
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
