package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"odonto-console/internal/handlers"
	"odonto-console/internal/middleware"
)

// Handlers groups every page handler the console serves.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Dashboard   *handlers.DashboardHandler
	Patients    *handlers.PatientHandler
	Visits      *handlers.VisitHandler
	Agenda      *handlers.AgendaHandler
	Odontogram  *handlers.OdontogramHandler
	Procedures  *handlers.ProcedureHandler
	Payments    *handlers.PaymentHandler
	Delinquents *handlers.DelinquentHandler
	Reports     *handlers.ReportHandler
	Users       *handlers.UserHandler
	LoginLogs   *handlers.LoginLogHandler
	Health      *handlers.HealthHandler
}

func NewRouter(h Handlers, guard *middleware.Guard, withCORS func(http.Handler) http.Handler, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.MetricsMiddleware)

	// Public
	r.HandleFunc("/login", h.Auth.LoginPage).Methods("GET")
	r.HandleFunc("/login", h.Auth.Login).Methods("POST")
	r.HandleFunc("/logout", h.Auth.Logout).Methods("POST", "GET")
	r.HandleFunc("/", guard.Home).Methods("GET")

	// Health check endpoints (no auth required)
	r.Handle("/health", withCORS(http.HandlerFunc(h.Health.BasicHealth))).Methods("GET", "OPTIONS")
	r.Handle("/health/ready", withCORS(http.HandlerFunc(h.Health.ReadinessHealth))).Methods("GET", "OPTIONS")
	r.Handle("/health/detailed", withCORS(http.HandlerFunc(h.Health.DetailedHealth))).Methods("GET", "OPTIONS")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Everything below needs a signed-in session
	protected := r.NewRoute().Subrouter()
	protected.Use(guard.RequireSession)

	section := func(prefix string) *mux.Router {
		s := protected.PathPrefix(prefix).Subrouter()
		s.Use(guard.RequireRole(middleware.RolesFor(prefix)...))
		return s
	}

	dashboard := section("/dashboard")
	dashboard.HandleFunc("", h.Dashboard.Dashboard).Methods("GET")

	patients := section("/pacientes")
	patients.HandleFunc("", h.Patients.List).Methods("GET")
	patients.HandleFunc("", h.Patients.Save).Methods("POST")
	patients.HandleFunc("/novo", h.Patients.New).Methods("GET")
	patients.HandleFunc("/{id:[0-9]+}", h.Patients.Detail).Methods("GET")
	patients.HandleFunc("/{id:[0-9]+}", h.Patients.Save).Methods("POST")
	patients.HandleFunc("/{id:[0-9]+}/editar", h.Patients.Edit).Methods("GET")
	patients.HandleFunc("/{id:[0-9]+}/excluir", h.Patients.ConfirmDelete).Methods("GET")
	patients.HandleFunc("/{id:[0-9]+}/excluir", h.Patients.Delete).Methods("POST")
	patients.HandleFunc("/{id:[0-9]+}/carnes", h.Reports.PatientBooklets).Methods("GET")

	visits := section("/atendimentos")
	visits.HandleFunc("", h.Visits.List).Methods("GET")
	visits.HandleFunc("", h.Visits.Save).Methods("POST")
	visits.HandleFunc("/novo", h.Visits.New).Methods("GET")
	visits.HandleFunc("/{id:[0-9]+}", h.Visits.Detail).Methods("GET")
	visits.HandleFunc("/{id:[0-9]+}", h.Visits.Save).Methods("POST")
	visits.HandleFunc("/{id:[0-9]+}/editar", h.Visits.Edit).Methods("GET")
	visits.HandleFunc("/{id:[0-9]+}/iniciar", h.Visits.Start).Methods("POST")
	visits.HandleFunc("/{id:[0-9]+}/cancelar", h.Visits.Cancel).Methods("POST")
	visits.HandleFunc("/{id:[0-9]+}/finalizar", h.Visits.FinishForm).Methods("GET")
	visits.HandleFunc("/{id:[0-9]+}/finalizar", h.Visits.Finish).Methods("POST")
	visits.HandleFunc("/{id:[0-9]+}/reagendar", h.Visits.Reschedule).Methods("POST")
	visits.HandleFunc("/{id:[0-9]+}/excluir", h.Visits.ConfirmDelete).Methods("GET")
	visits.HandleFunc("/{id:[0-9]+}/excluir", h.Visits.Delete).Methods("POST")

	agenda := section("/agendas")
	agenda.HandleFunc("", h.Agenda.Agenda).Methods("GET")

	chart := section("/odontograma")
	chart.HandleFunc("", h.Odontogram.Show).Methods("GET")
	chart.HandleFunc("", h.Odontogram.Record).Methods("POST")

	procedures := section("/procedimentos")
	procedures.HandleFunc("", h.Procedures.List).Methods("GET")
	procedures.HandleFunc("", h.Procedures.Save).Methods("POST")
	procedures.HandleFunc("/novo", h.Procedures.New).Methods("GET")
	procedures.HandleFunc("/{id:[0-9]+}", h.Procedures.Save).Methods("POST")
	procedures.HandleFunc("/{id:[0-9]+}/editar", h.Procedures.Edit).Methods("GET")
	procedures.HandleFunc("/{id:[0-9]+}/excluir", h.Procedures.ConfirmDelete).Methods("GET")
	procedures.HandleFunc("/{id:[0-9]+}/excluir", h.Procedures.Delete).Methods("POST")

	payments := section("/pagamentos")
	payments.HandleFunc("", h.Payments.List).Methods("GET")
	payments.HandleFunc("", h.Payments.Create).Methods("POST")
	payments.HandleFunc("/novo", h.Payments.New).Methods("GET")
	payments.HandleFunc("/{id:[0-9]+}", h.Payments.Detail).Methods("GET")
	payments.HandleFunc("/{id:[0-9]+}/excluir", h.Payments.ConfirmDelete).Methods("GET")
	payments.HandleFunc("/{id:[0-9]+}/excluir", h.Payments.Delete).Methods("POST")
	payments.HandleFunc("/{id:[0-9]+}/estornar-todas", h.Payments.ConfirmReverseAll).Methods("GET")
	payments.HandleFunc("/{id:[0-9]+}/estornar-todas", h.Payments.ReverseAll).Methods("POST")
	payments.HandleFunc("/{id:[0-9]+}/carne", h.Reports.Booklet).Methods("GET")

	// installments belong to the payments screen
	installments := protected.PathPrefix("/parcelas").Subrouter()
	installments.Use(guard.RequireRole(middleware.RolesFor("/pagamentos")...))
	installments.HandleFunc("/{id:[0-9]+}", h.Payments.UpdateInstallment).Methods("POST")
	installments.HandleFunc("/{id:[0-9]+}/editar", h.Payments.EditInstallment).Methods("GET")
	installments.HandleFunc("/{id:[0-9]+}/pagar", h.Payments.Pay).Methods("POST")
	installments.HandleFunc("/{id:[0-9]+}/estornar", h.Payments.ConfirmReverse).Methods("GET")
	installments.HandleFunc("/{id:[0-9]+}/estornar", h.Payments.Reverse).Methods("POST")

	delinquents := section("/inadimplentes")
	delinquents.HandleFunc("", h.Delinquents.List).Methods("GET")

	reports := section("/relatorios")
	reports.HandleFunc("", h.Reports.Reports).Methods("GET")
	reports.HandleFunc("/exportar", h.Reports.Export).Methods("GET")

	users := section("/usuarios")
	users.HandleFunc("", h.Users.List).Methods("GET")
	users.HandleFunc("", h.Users.Save).Methods("POST")
	users.HandleFunc("/novo", h.Users.New).Methods("GET")
	users.HandleFunc("/acessos", h.LoginLogs.ListLoginLogs).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}", h.Users.Save).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/editar", h.Users.Edit).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}/status", h.Users.ConfirmToggle).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}/status", h.Users.Toggle).Methods("POST")
	users.HandleFunc("/{id:[0-9]+}/excluir", h.Users.ConfirmDelete).Methods("GET")
	users.HandleFunc("/{id:[0-9]+}/excluir", h.Users.Delete).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(guard.Home)
	return r
}
