package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/models"
	"odonto-console/internal/session"
)

type staticAuth struct {
	user *models.User
}

func (a staticAuth) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return &models.AuthResponse{Token: "opaque-token", Type: "Bearer", User: a.user}, nil
}

func newGuard(t *testing.T, role models.Role, ready bool) (*Guard, *session.Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	user := &models.User{ID: 4, Name: "Bia", Email: "bia@clinica.com", Role: role, Active: true}
	mgr := session.NewManager(store, staticAuth{user: user}, time.Hour, zerolog.Nop())
	if ready {
		if err := mgr.Bootstrap(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	loading := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Carregando..."))
	})
	return NewGuard(mgr, CookieOptions{Name: "consultorio_session"}, loading, zerolog.Nop()), mgr, store
}

func login(t *testing.T, mgr *session.Manager) *http.Cookie {
	t.Helper()
	s, err := mgr.Login(context.Background(), "bia@clinica.com", "secret", session.ClientInfo{})
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "consultorio_session", Value: s.ID}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	w.Write([]byte("hello " + s.User.Name))
})

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		withCookie bool
		badCookie  bool
		wantStatus int
		wantLoc    string
		wantBody   string
	}{
		{name: "loading", ready: false, withCookie: true, wantStatus: http.StatusServiceUnavailable, wantBody: "Carregando"},
		{name: "anonymous", ready: true, wantStatus: http.StatusFound, wantLoc: "/login"},
		{name: "unknown session", ready: true, badCookie: true, wantStatus: http.StatusFound, wantLoc: "/login"},
		{name: "signed in", ready: true, withCookie: true, wantStatus: http.StatusOK, wantBody: "hello Bia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mgr, _ := newGuard(t, models.RoleDentist, tt.ready)
			req := httptest.NewRequest(http.MethodGet, "/pacientes", nil)
			if tt.withCookie {
				req.AddCookie(login(t, mgr))
			}
			if tt.badCookie {
				req.AddCookie(&http.Cookie{Name: "consultorio_session", Value: "nope"})
			}
			rec := httptest.NewRecorder()
			g.RequireSession(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("location = %q", rec.Header().Get("Location"))
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestRequireSession_ExpiredRecordRedirects(t *testing.T) {
	g, mgr, store := newGuard(t, models.RoleDentist, true)
	cookie := login(t, mgr)
	store.Delete(context.Background(), cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/pagamentos", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	g.RequireSession(okHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("stale cookie not cleared: %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role    models.Role
		allowed []models.Role
		wantLoc string
	}{
		{models.RoleAdmin, adminOnly, ""},
		{models.RoleDentist, adminOnly, "/dashboard"},
		{models.RoleReceptionist, clinicalOnly, "/atendimentos"},
		{models.RoleDentist, clinicalOnly, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			g, mgr, _ := newGuard(t, tt.role, true)
			req := httptest.NewRequest(http.MethodGet, "/usuarios", nil)
			req.AddCookie(login(t, mgr))
			rec := httptest.NewRecorder()

			g.RequireSession(g.RequireRole(tt.allowed...)(okHandler)).ServeHTTP(rec, req)

			if tt.wantLoc == "" {
				if rec.Code != http.StatusOK {
					t.Errorf("status = %d, want 200", rec.Code)
				}
				return
			}
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("got %d %q, want redirect to %s", rec.Code, rec.Header().Get("Location"), tt.wantLoc)
			}
		})
	}
}

func TestHome(t *testing.T) {
	tests := []struct {
		role    models.Role
		signed  bool
		wantLoc string
	}{
		{models.RoleReceptionist, true, "/atendimentos"},
		{models.RoleAdmin, true, "/dashboard"},
		{models.RoleDentist, true, "/dashboard"},
		{models.RoleDentist, false, "/login"},
	}
	for _, tt := range tests {
		g, mgr, _ := newGuard(t, tt.role, true)
		req := httptest.NewRequest(http.MethodGet, "/rota-inexistente", nil)
		if tt.signed {
			req.AddCookie(login(t, mgr))
		}
		rec := httptest.NewRecorder()
		g.Home(rec, req)
		if got := rec.Header().Get("Location"); got != tt.wantLoc {
			t.Errorf("%s signed=%v: location = %q, want %q", tt.role, tt.signed, got, tt.wantLoc)
		}
	}
}

func TestMenuFor(t *testing.T) {
	paths := func(items []MenuItem) string {
		var p []string
		for _, it := range items {
			p = append(p, it.Path)
		}
		return strings.Join(p, ",")
	}

	if got := paths(MenuFor(models.RoleReceptionist)); got != "/pacientes,/atendimentos,/agendas,/odontograma,/pagamentos,/inadimplentes" {
		t.Errorf("receptionist menu = %s", got)
	}
	if n := len(MenuFor(models.RoleAdmin)); n != 10 {
		t.Errorf("admin sees %d items", n)
	}
	if strings.Contains(paths(MenuFor(models.RoleDentist)), "/usuarios") {
		t.Error("dentist should not see users")
	}
	if RolesFor("/nada") != nil {
		t.Error("unknown path has roles")
	}
}

func TestRequestLoggerIncludesUser(t *testing.T) {
	g, mgr, _ := newGuard(t, models.RoleDentist, true)
	var buf bytes.Buffer
	h := RequestLogger(zerolog.New(&buf))(g.RequireSession(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/pacientes", nil)
	req.AddCookie(login(t, mgr))
	h.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{`"path":"/pacientes"`, `"status":200`, `"user_id":4`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %s missing %s", line, want)
		}
	}
}

func TestPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := PanicRecovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Error("panic not logged")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	if got := ClientIP(req); got != "10.0.0.9" {
		t.Errorf("remote addr: %q", got)
	}
	req.Header.Set("X-Forwarded-For", "200.1.1.1, 10.0.0.1")
	if got := ClientIP(req); got != "200.1.1.1" {
		t.Errorf("forwarded: %q", got)
	}
}
