// Package session keeps the signed-in staff member and their backend token,
// persisted together as one record per browser session.
package session

import (
	"context"
	"errors"
	"time"

	"odonto-console/internal/models"
)

var (
	// ErrNoSession means there is no usable persisted session.
	ErrNoSession = errors.New("no session")
	// ErrIncompleteLogin means the backend accepted the credentials but omitted the token or user.
	ErrIncompleteLogin = errors.New("login response missing token or user")
)

type Session struct {
	ID        string
	User      *models.User
	Token     string
	CreatedAt time.Time
}

func (s *Session) Role() models.Role {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Role
}

// DefaultPath is where the role lands after login or on an unknown route.
func DefaultPath(role models.Role) string {
	if role == models.RoleReceptionist {
		return "/atendimentos"
	}
	return "/dashboard"
}

type contextKey string

const sessionKey contextKey = "session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// ClientInfo identifies the browser for the login audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}
