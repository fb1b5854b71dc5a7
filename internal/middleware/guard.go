package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/models"
	"odonto-console/internal/session"
)

// Sessions is the part of the session manager the guard depends on.
type Sessions interface {
	Ready() bool
	Resume(ctx context.Context, id string) (*session.Session, error)
}

type CookieOptions struct {
	Name   string
	Secure bool
}

// Guard resolves the browser session for protected routes.
type Guard struct {
	sessions Sessions
	cookie   CookieOptions
	loading  http.Handler
	logger   zerolog.Logger
}

// NewGuard builds the route guard. loading is served, with 503, while the
// session store is still bootstrapping.
func NewGuard(sessions Sessions, cookie CookieOptions, loading http.Handler, logger zerolog.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		cookie:   cookie,
		loading:  loading,
		logger:   logger.With().Str("component", "guard").Logger(),
	}
}

// Current returns the session referenced by the request cookie.
func (g *Guard) Current(r *http.Request) (*session.Session, error) {
	c, err := r.Cookie(g.cookie.Name)
	if err != nil || c.Value == "" {
		return nil, session.ErrNoSession
	}
	return g.sessions.Resume(r.Context(), c.Value)
}

// RequireSession redirects anonymous requests to /login and puts the session
// in the request context for everything else.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.sessions.Ready() {
			g.serveLoading(w, r)
			return
		}

		s, err := g.Current(r)
		if errors.Is(err, session.ErrNoSession) {
			if _, cerr := r.Cookie(g.cookie.Name); cerr == nil {
				g.ClearCookie(w)
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if err != nil {
			g.logger.Error().Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
			g.serveLoading(w, r)
			return
		}

		noteUser(r.Context(), s.User.ID)
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}

// RequireRole sends users outside roles to their default screen. It must run
// after RequireSession.
func (g *Guard) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			for _, role := range roles {
				if s.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Redirect(w, r, session.DefaultPath(s.Role()), http.StatusFound)
		})
	}
}

// Home handles "/" and unknown paths: the role's default screen, or /login.
func (g *Guard) Home(w http.ResponseWriter, r *http.Request) {
	if !g.sessions.Ready() {
		g.serveLoading(w, r)
		return
	}
	s, err := g.Current(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, session.DefaultPath(s.Role()), http.StatusFound)
}

func (g *Guard) SetCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Guard) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName is the cookie carrying the session id.
func (g *Guard) CookieName() string { return g.cookie.Name }

func (g *Guard) serveLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "2")
	if g.loading == nil {
		http.Error(w, "Carregando...", http.StatusServiceUnavailable)
		return
	}
	g.loading.ServeHTTP(w, r)
}
