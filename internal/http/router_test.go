package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/api"
	"odonto-console/internal/handlers"
	"odonto-console/internal/health"
	"odonto-console/internal/middleware"
	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/session"
)

const cookieName = "consultorio_session"

var staff = map[string]models.User{
	"ana@clinica.com":  {ID: 1, Name: "Ana", Email: "ana@clinica.com", Role: models.RoleAdmin, Active: true},
	"bia@clinica.com":  {ID: 2, Name: "Bia", Email: "bia@clinica.com", Role: models.RoleDentist, Active: true},
	"caio@clinica.com": {ID: 3, Name: "Caio", Email: "caio@clinica.com", Role: models.RoleReceptionist, Active: true},
}

// backend fakes the clinic REST API: "METHOD /api/path" -> status + JSON.
type backend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	calls  []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls = append(b.calls, key)
	h, ok := b.routes[key]
	b.mu.Unlock()
	if !ok {
		http.Error(w, `{"message":"não encontrado"}`, http.StatusNotFound)
		return
	}
	h(w, r)
}

func (b *backend) json(method, path string, status int, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" /api"+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}
}

func (b *backend) called(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == key {
			return true
		}
	}
	return false
}

type app struct {
	t        *testing.T
	backend  *backend
	sessions *session.Manager
	router   http.Handler
}

func newApp(t *testing.T, ready bool) *app {
	t.Helper()
	be := &backend{routes: map[string]func(http.ResponseWriter, *http.Request){}}
	be.routes["POST /api/auth/login"] = func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		u, ok := staff[req.Email]
		if !ok {
			http.Error(w, `{"message":"Usuário não encontrado"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{Token: "tok-" + u.Email, Type: "Bearer", User: &u})
	}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client := api.NewClient(srv.URL+"/api", 5*time.Second, logger)
	store := session.NewMemoryStore()
	mgr := session.NewManager(store, services.NewAuthService(client), time.Hour, logger)
	client.SetTokenSource(mgr)
	client.OnSessionExpired(mgr.Expire)
	if ready {
		if err := mgr.Bootstrap(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	pages, err := handlers.NewPageHandler(logger)
	if err != nil {
		t.Fatal(err)
	}
	guard := middleware.NewGuard(mgr, middleware.CookieOptions{Name: cookieName}, http.HandlerFunc(pages.Loading), logger)
	base := handlers.NewBase(pages, guard, logger)

	patients := services.NewPatientService(client)
	users := services.NewUserService(client)
	visits := services.NewVisitService(client)
	procedures := services.NewProcedureService(client)
	payments := services.NewPaymentService(client)
	installments := services.NewInstallmentService(client)
	stats := services.NewStatisticsService(client)
	reports := services.NewReportService(client, payments, installments, nil, logger)

	router := NewRouter(Handlers{
		Auth:        handlers.NewAuthHandler(base, mgr, time.Hour),
		Dashboard:   handlers.NewDashboardHandler(base, stats),
		Patients:    handlers.NewPatientHandler(base, patients, visits, payments, installments, users),
		Visits:      handlers.NewVisitHandler(base, visits, patients, users, procedures, payments),
		Agenda:      handlers.NewAgendaHandler(base, visits, users),
		Odontogram:  handlers.NewOdontogramHandler(base, services.NewOdontogramService(client), patients),
		Procedures:  handlers.NewProcedureHandler(base, procedures),
		Payments:    handlers.NewPaymentHandler(base, payments, installments, patients, users),
		Delinquents: handlers.NewDelinquentHandler(base, services.NewDelinquencyService(installments)),
		Reports:     handlers.NewReportHandler(base, reports, stats),
		Users:       handlers.NewUserHandler(base, users),
		LoginLogs:   handlers.NewLoginLogHandler(base, nil),
		Health:      handlers.NewHealthHandler(health.NewHealthChecker(store, client, mgr.Ready)),
	}, guard, func(h http.Handler) http.Handler { return h }, logger)

	return &app{t: t, backend: be, sessions: mgr, router: router}
}

func (a *app) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *app) login(email string) *http.Cookie {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/login", url.Values{"email": {email}, "senha": {"segredo"}}, nil)
	if rec.Code != http.StatusSeeOther {
		a.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c
		}
	}
	a.t.Fatalf("login %s: no session cookie", email)
	return nil
}

func TestLoginRedirectsByRole(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ana@clinica.com", "/dashboard"},
		{"bia@clinica.com", "/dashboard"},
		{"caio@clinica.com", "/atendimentos"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			a := newApp(t, true)
			rec := a.do(http.MethodPost, "/login", url.Values{"email": {tt.email}, "senha": {"segredo"}}, nil)
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("Location = %q, want %q", loc, tt.want)
			}
		})
	}
}

func TestLoginUnknownEmailStaysOnForm(t *testing.T) {
	a := newApp(t, true)
	rec := a.do(http.MethodPost, "/login", url.Values{"email": {"x@clinica.com"}, "senha": {"segredo"}}, nil)
	if rec.Code == http.StatusSeeOther {
		t.Fatal("unknown user must not sign in")
	}
	if !strings.Contains(rec.Body.String(), `value="x@clinica.com"`) {
		t.Error("typed email should be kept on the form")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			t.Error("no session cookie expected")
		}
	}
}

func TestProtectedRoutes(t *testing.T) {
	a := newApp(t, true)
	reception := a.login("caio@clinica.com")

	tests := []struct {
		name    string
		path    string
		cookie  *http.Cookie
		status  int
		wantLoc string
	}{
		{"anonymous", "/pacientes", nil, http.StatusFound, "/login"},
		{"receptionist on dashboard", "/dashboard", reception, http.StatusFound, "/atendimentos"},
		{"receptionist on users", "/usuarios", reception, http.StatusFound, "/atendimentos"},
		{"receptionist on reports", "/relatorios/exportar", reception, http.StatusFound, "/atendimentos"},
		{"unknown path", "/nada", reception, http.StatusFound, "/atendimentos"},
		{"root", "/", reception, http.StatusFound, "/atendimentos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, tt.path, nil, tt.cookie)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
		})
	}
}

func TestLoadingUntilBootstrapped(t *testing.T) {
	a := newApp(t, false)
	rec := a.do(http.MethodGet, "/pacientes", nil, &http.Cookie{Name: cookieName, Value: "abc"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Carregando") {
		t.Error("loading page expected")
	}
}

func TestBackendUnauthorizedEndsSession(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("bia@clinica.com")
	a.backend.json(http.MethodGet, "/pacientes", http.StatusUnauthorized, `{"message":"token expirado"}`)

	rec := a.do(http.MethodGet, "/pacientes", nil, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d %q, want redirect to /login", rec.Code, rec.Header().Get("Location"))
	}

	// the record is gone, so the old cookie no longer opens pages
	rec = a.do(http.MethodGet, "/procedimentos", nil, cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("second request got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestReceptionistCannotRecordOdontogram(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("caio@clinica.com")
	a.backend.json(http.MethodGet, "/pacientes", http.StatusOK, `[{"id":5,"nome":"Maria Souza","dataNascimento":"1990-04-02"}]`)
	a.backend.json(http.MethodGet, "/odontograma/paciente/5/historico", http.StatusOK,
		`[{"id":1,"paciente":{"id":5,"nome":"Maria Souza"},"dentista":{"id":2,"nome":"Bia"},"numeroDente":11,"status":"CARIE","dataRegistro":"2025-05-01T10:00:00","faceOclusal":true}]`)
	a.backend.json(http.MethodGet, "/odontograma/paciente/5/dente/11", http.StatusOK,
		`[{"id":1,"paciente":{"id":5,"nome":"Maria Souza"},"dentista":{"id":2,"nome":"Bia"},"numeroDente":11,"status":"CARIE","dataRegistro":"2025-05-01T10:00:00","faceOclusal":true}]`)

	form := url.Values{"paciente": {"5"}, "dente": {"11"}, "status": {"RESTAURACAO"}, "faces": {"oclusal"}}
	rec := a.do(http.MethodPost, "/odontograma", form, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Apenas dentistas podem editar o odontograma.") {
		t.Error("read-only message expected")
	}
	if a.backend.called("POST /api/odontograma") {
		t.Error("nothing should reach the backend")
	}
}

func TestReverseAllConfirmThenPost(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("caio@clinica.com")
	a.backend.json(http.MethodGet, "/parcelas/pagamento/7", http.StatusOK, `[
		{"id":72,"numeroParcela":2,"valorParcela":100,"dataVencimento":"2025-02-10","status":"PAGO"},
		{"id":71,"numeroParcela":1,"valorParcela":100,"dataVencimento":"2025-01-10","status":"PAGO"},
		{"id":73,"numeroParcela":3,"valorParcela":100,"dataVencimento":"2025-03-10","status":"PENDENTE"}
	]`)
	a.backend.json(http.MethodPatch, "/parcelas/pagamento/7/estornar-todas", http.StatusOK, `[]`)

	rec := a.do(http.MethodGet, "/pagamentos/7/estornar-todas", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Deseja estornar TODAS as parcelas deste pagamento?", "Parcelas que serão estornadas: 2", `action="/pagamentos/7/estornar-todas"`} {
		if !strings.Contains(body, want) {
			t.Errorf("confirm page missing %q", want)
		}
	}
	if a.backend.called("PATCH /api/parcelas/pagamento/7/estornar-todas") {
		t.Fatal("GET must not reverse anything")
	}

	rec = a.do(http.MethodPost, "/pagamentos/7/estornar-todas", url.Values{}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("post status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/pagamentos/7?ok=estornado" {
		t.Errorf("Location = %q", loc)
	}
	if !a.backend.called("PATCH /api/parcelas/pagamento/7/estornar-todas") {
		t.Error("reverse-all not sent")
	}
}

func TestReverseAllWithNothingPaid(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("caio@clinica.com")
	a.backend.json(http.MethodGet, "/parcelas/pagamento/8", http.StatusOK,
		`[{"id":81,"numeroParcela":1,"valorParcela":50,"dataVencimento":"2025-01-10","status":"PENDENTE"}]`)

	rec := a.do(http.MethodGet, "/pagamentos/8/estornar-todas", nil, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Não há parcelas pagas para estornar.") {
		t.Error("nothing-to-reverse message expected")
	}
	if strings.Contains(rec.Body.String(), `action="/pagamentos/8/estornar-todas"`) {
		t.Error("no confirm button expected")
	}
}

func TestHealthEndpoints(t *testing.T) {
	a := newApp(t, true)
	rec := a.do(http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	var st health.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "healthy" || !st.Ready {
		t.Errorf("status = %+v", st)
	}

	a = newApp(t, false)
	if rec := a.do(http.MethodGet, "/health", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health before bootstrap = %d", rec.Code)
	}
}

const cariesRecord = `[{"id":1,"paciente":{"id":5,"nome":"Maria Souza"},"dentista":{"id":2,"nome":"Bia"},"numeroDente":11,"status":"CARIE","dataRegistro":"2025-05-01T10:00:00","faceOclusal":true}]`

func (a *app) chartFixtures() {
	a.backend.json(http.MethodGet, "/pacientes", http.StatusOK, `[{"id":5,"nome":"Maria Souza","dataNascimento":"1990-04-02"}]`)
	a.backend.json(http.MethodGet, "/odontograma/paciente/5/historico", http.StatusOK, cariesRecord)
}

func TestToothHistoryFailureKeepsChart(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("bia@clinica.com")
	a.chartFixtures()
	a.backend.json(http.MethodGet, "/odontograma/paciente/5/dente/11", http.StatusInternalServerError, `{"message":"falha interna"}`)

	rec := a.do(http.MethodGet, "/odontograma?paciente=5&dente=11", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Registrados", "Carregando histórico...", `name="procedimento"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRecordShowsBackendMessage(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("bia@clinica.com")
	a.chartFixtures()
	a.backend.json(http.MethodGet, "/odontograma/paciente/5/dente/11", http.StatusOK, cariesRecord)
	a.backend.json(http.MethodPost, "/odontograma", http.StatusBadRequest, `{"message":"dente bloqueado"}`)

	form := url.Values{"paciente": {"5"}, "dente": {"11"}, "status": {"RESTAURACAO"}, "procedimento": {"resina composta"}}
	rec := a.do(http.MethodPost, "/odontograma", form, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "dente bloqueado") {
		t.Error("backend message should be shown")
	}
	if strings.Contains(body, "Erro ao salvar odontograma.") {
		t.Error("generic message should not replace the backend one")
	}
	if !strings.Contains(body, `value="resina composta"`) {
		t.Error("typed procedure should be kept")
	}
}

func TestRecordFailureKeepsTypedValues(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *app)
		want  []string
	}{
		{
			name: "tooth history unavailable",
			setup: func(a *app) {
				a.chartFixtures()
				a.backend.json(http.MethodGet, "/odontograma/paciente/5/dente/11", http.StatusInternalServerError, `{}`)
			},
			want: []string{"Registrados", "Carregando histórico..."},
		},
		{
			name: "patient list unavailable",
			setup: func(a *app) {
				a.backend.json(http.MethodGet, "/pacientes", http.StatusInternalServerError, `{}`)
			},
			want: []string{"Carregando odontograma..."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, true)
			cookie := a.login("bia@clinica.com")
			tt.setup(a)
			a.backend.json(http.MethodPost, "/odontograma", http.StatusInternalServerError, `{}`)

			form := url.Values{"paciente": {"5"}, "dente": {"11"}, "status": {"CANAL"}, "procedimento": {"resina composta"}, "observacoes": {"sensibilidade"}}
			rec := a.do(http.MethodPost, "/odontograma", form, cookie)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d", rec.Code)
			}
			body := rec.Body.String()
			want := append(tt.want, "Erro ao salvar odontograma.", `value="resina composta"`, "sensibilidade", `value="CANAL" selected`)
			for _, s := range want {
				if !strings.Contains(body, s) {
					t.Errorf("page missing %q", s)
				}
			}
		})
	}
}

func TestChartShowsLoadingWhenPatientsFail(t *testing.T) {
	a := newApp(t, true)
	cookie := a.login("bia@clinica.com")
	a.backend.json(http.MethodGet, "/pacientes", http.StatusBadGateway, `{}`)

	rec := a.do(http.MethodGet, "/odontograma?paciente=5", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Carregando odontograma...") {
		t.Error("loading message expected")
	}
}
