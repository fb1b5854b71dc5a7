package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"odonto-console/internal/metrics"
	"odonto-console/internal/models"
)

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
}

// AuditLog receives login, logout and expiry events.
type AuditLog interface {
	Record(ctx context.Context, entry *models.LoginLog) error
}

// record is the persisted shape. User and token always travel together.
type record struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Manager struct {
	store  Store
	auth   Authenticator
	audit  AuditLog
	ttl    time.Duration
	logger zerolog.Logger
	ready  atomic.Bool
	now    func() time.Time
}

func NewManager(store Store, auth Authenticator, ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		ttl:    ttl,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
}

// SetAuditLog enables the login audit trail.
func (m *Manager) SetAuditLog(a AuditLog) {
	m.audit = a
}

// Ready reports whether Bootstrap has completed. Until then protected routes
// show the loading placeholder.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Bootstrap checks the store, applies its schema and drops expired records.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("session store unreachable: %w", err)
	}
	if mg, ok := m.store.(Migrator); ok {
		if err := mg.Migrate(ctx); err != nil {
			return fmt.Errorf("session store migration: %w", err)
		}
	}
	if p, ok := m.store.(Purger); ok {
		n, err := p.Purge(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Msg("purge of expired sessions failed")
		} else if n > 0 {
			m.logger.Info().Int64("purged", n).Msg("expired sessions removed")
		}
	}
	m.ready.Store(true)
	return nil
}

// Resume loads the session persisted under id. Partial, malformed or expired
// records are deleted and reported as ErrNoSession.
func (m *Manager) Resume(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	data, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || !rec.User.Complete() || !m.tokenUsable(rec.Token) {
		m.discard(ctx, id)
		return nil, ErrNoSession
	}

	return &Session{ID: id, User: rec.User, Token: rec.Token, CreatedAt: rec.CreatedAt}, nil
}

// Login authenticates against the backend and persists user and token under a
// fresh session id. Nothing is persisted on failure.
func (m *Manager) Login(ctx context.Context, email, password string, client ClientInfo) (*Session, error) {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.recordEvent(ctx, models.LoginEventFailed, nil, email, "", client)
		metrics.SessionEventsTotal.WithLabelValues(models.LoginEventFailed).Inc()
		return nil, err
	}
	if resp == nil || !resp.User.Complete() || !m.tokenUsable(resp.Token) {
		return nil, ErrIncompleteLogin
	}

	s := &Session{
		ID:        uuid.New().String(),
		User:      resp.User,
		Token:     resp.Token,
		CreatedAt: m.now(),
	}
	data, err := json.Marshal(record{User: s.User, Token: s.Token, CreatedAt: s.CreatedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.Save(ctx, s.ID, data, m.ttlFor(s.Token)); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.logger.Info().Int("user_id", s.User.ID).Str("role", string(s.User.Role)).Msg("login")
	m.recordEvent(ctx, models.LoginEventLogin, s.User, s.User.Email, s.ID, client)
	metrics.SessionEventsTotal.WithLabelValues(models.LoginEventLogin).Inc()
	return s, nil
}

// Logout removes the persisted record. Unknown ids are not an error.
func (m *Manager) Logout(ctx context.Context, id string, client ClientInfo) error {
	if id == "" {
		return nil
	}
	s, _ := m.Resume(ctx, id)
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if s != nil {
		m.recordEvent(ctx, models.LoginEventLogout, s.User, s.User.Email, id, client)
	}
	metrics.SessionEventsTotal.WithLabelValues(models.LoginEventLogout).Inc()
	return nil
}

// Expire drops the session carried in ctx. It is the api client's hook for a
// rejected token.
func (m *Manager) Expire(ctx context.Context) {
	s, ok := FromContext(ctx)
	if !ok {
		return
	}
	// the request may already be cancelled; the record must go regardless
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := m.store.Delete(dctx, s.ID); err != nil {
		m.logger.Error().Err(err).Str("session_id", s.ID).Msg("failed to delete expired session")
		return
	}
	m.logger.Info().Int("user_id", s.User.ID).Msg("session expired by backend")
	m.recordEvent(dctx, models.LoginEventExpiry, s.User, s.User.Email, s.ID, ClientInfo{})
	metrics.SessionEventsTotal.WithLabelValues(models.LoginEventExpiry).Inc()
}

// Token returns the bearer token of the session in ctx, read from the store
// on every call.
func (m *Manager) Token(ctx context.Context) (string, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	current, err := m.Resume(ctx, s.ID)
	if err != nil {
		return "", err
	}
	return current.Token, nil
}

func (m *Manager) discard(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn().Err(err).Str("session_id", id).Msg("failed to delete unusable session")
	}
	metrics.SessionEventsTotal.WithLabelValues("discarded").Inc()
}

func (m *Manager) recordEvent(ctx context.Context, event string, user *models.User, email, id string, client ClientInfo) {
	if m.audit == nil {
		return
	}
	entry := &models.LoginLog{
		Email:     email,
		Event:     event,
		SessionID: id,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
	}
	if user != nil {
		uid := user.ID
		entry.UserID = &uid
	}
	if err := m.audit.Record(ctx, entry); err != nil {
		m.logger.Warn().Err(err).Str("event", event).Msg("failed to record login event")
	}
}

// tokenUsable accepts opaque tokens and unexpired JWTs. Signatures are the
// backend's concern and are not verified here.
func (m *Manager) tokenUsable(token string) bool {
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return false
	}
	if strings.Count(token, ".") != 2 {
		return true
	}
	exp, err := tokenExpiry(token)
	if err != nil {
		return false
	}
	return exp.IsZero() || exp.After(m.now())
}

// ttlFor caps the configured lifetime at the token's own expiry.
func (m *Manager) ttlFor(token string) time.Duration {
	ttl := m.ttl
	if strings.Count(token, ".") != 2 {
		return ttl
	}
	exp, err := tokenExpiry(token)
	if err != nil || exp.IsZero() {
		return ttl
	}
	if left := exp.Sub(m.now()); left < ttl {
		return left
	}
	return ttl
}

func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
