package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"odonto-console/internal/middleware"
	"odonto-console/internal/session"
)

type AuthHandler struct {
	*Base
	Sessions *session.Manager
	TTL      time.Duration
}

func NewAuthHandler(base *Base, sessions *session.Manager, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Base: base, Sessions: sessions, TTL: ttl}
}

type loginForm struct {
	Email string
}

// LoginPage serves the login form; a signed-in user goes straight to their screen.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.Sessions.Ready() {
		if s, err := h.Guard.Current(r); err == nil {
			http.Redirect(w, r, session.DefaultPath(s.Role()), http.StatusFound)
			return
		}
	}
	p := &Page{Title: "Entrar", Data: loginForm{}}
	h.render(w, "login.html", p)
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Ready() {
		h.Pages.Loading(w, r)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	p := &Page{Title: "Entrar", Data: loginForm{Email: email}}

	s, err := h.Sessions.Login(r.Context(), email, r.FormValue("senha"), middleware.ClientInfo(r))
	if errors.Is(err, session.ErrIncompleteLogin) {
		h.Logger.Error().Err(err).Str("email", email).Msg("backend returned incomplete login")
		p.Error = "Resposta inválida do servidor. Tente novamente."
		h.Pages.Render(w, http.StatusBadGateway, "login.html", p)
		return
	}
	if err != nil {
		p.Error = h.message(r, err)
		h.Pages.Render(w, statusFor(err), "login.html", p)
		return
	}

	h.Guard.SetCookie(w, s.ID, h.TTL)
	http.Redirect(w, r, session.DefaultPath(s.Role()), http.StatusSeeOther)
}

// Logout deletes the persisted session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.Guard.CookieName()); err == nil {
		if err := h.Sessions.Logout(r.Context(), c.Value, middleware.ClientInfo(r)); err != nil {
			h.Logger.Error().Err(err).Msg("logout failed")
		}
	}
	h.Guard.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
