package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
)

type VisitHandler struct {
	*Base
	Visits     *services.VisitService
	Patients   *services.PatientService
	Users      *services.UserService
	Procedures *services.ProcedureService
	Payments   *services.PaymentService
}

func NewVisitHandler(base *Base, visits *services.VisitService, patients *services.PatientService,
	users *services.UserService, procedures *services.ProcedureService, payments *services.PaymentService) *VisitHandler {
	return &VisitHandler{
		Base:       base,
		Visits:     visits,
		Patients:   patients,
		Users:      users,
		Procedures: procedures,
		Payments:   payments,
	}
}

type visitListView struct {
	All        bool
	Status     models.VisitStatus
	Statuses   []models.VisitStatus
	Counts     map[models.VisitStatus]int
	Total      int
	Visits     []models.Visit
	InProgress []models.Visit
}

// List shows today's visits by default, or every visit with ?todos=1.
// Dentists only see their own.
func (h *VisitHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()
	all := q.Get("todos") == "1"

	visits, err := h.Visits.Visible(r.Context(), user, all)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var running []models.Visit
	if user.Role == models.RoleDentist {
		running, err = h.Visits.InProgressForDentist(r.Context(), user.ID)
	} else {
		running, err = h.Visits.InProgress(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := models.VisitStatus(q.Get("status"))
	p := NewPage(r, "Atendimentos", "/atendimentos")
	p.Data = visitListView{
		All:        all,
		Status:     status,
		Statuses:   []models.VisitStatus{models.VisitWaiting, models.VisitInProgress, models.VisitFinished, models.VisitCancelled},
		Counts:     services.VisitCounts(visits),
		Total:      len(visits),
		Visits:     services.FilterVisits(visits, status),
		InProgress: running,
	}
	h.render(w, "visits.html", p)
}

type visitFormView struct {
	ID       int
	Form     models.VisitRequest
	Patients []models.Patient
	Dentists []models.User
	Types    []models.VisitType
}

func (v visitFormView) Action() string {
	if v.ID > 0 {
		return fmt.Sprintf("/atendimentos/%d", v.ID)
	}
	return "/atendimentos"
}

// ScheduledInput is the stored schedule in datetime-local form.
func (v visitFormView) ScheduledInput() string {
	t, err := timeutil.ParseBackend(v.Form.ScheduledAt)
	if err != nil {
		return v.Form.ScheduledAt
	}
	return t.Format(timeutil.HTMLDateTimeLocal)
}

func (h *VisitHandler) New(w http.ResponseWriter, r *http.Request) {
	form := models.VisitRequest{Type: models.VisitConsultation, PatientID: formInt(r, "paciente")}
	if user := currentUser(r); user.Role == models.RoleDentist {
		form.DentistID = user.ID
	}
	h.showForm(w, r, "Novo Atendimento", 0, form, nil)
}

func (h *VisitHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Visits.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form := models.VisitRequest{
		Type:         v.Type,
		Status:       v.Status,
		Scheduled:    v.Scheduled,
		ScheduledAt:  v.ScheduledAt,
		Reason:       v.Reason,
		InitialNotes: v.InitialNotes,
	}
	if v.Patient != nil {
		form.PatientID = v.Patient.ID
	}
	if v.Dentist != nil {
		form.DentistID = v.Dentist.ID
	}
	h.showForm(w, r, "Editar Atendimento", id, form, nil)
}

func (h *VisitHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	req := models.VisitRequest{
		PatientID:    formInt(r, "pacienteId"),
		DentistID:    formInt(r, "dentistaId"),
		Type:         models.VisitType(r.FormValue("tipoAtendimento")),
		Status:       models.VisitStatus(r.FormValue("status")),
		Scheduled:    formBool(r, "isAgendado"),
		ScheduledAt:  r.FormValue("dataHoraAgendamento"),
		Reason:       r.FormValue("motivoConsulta"),
		InitialNotes: strings.TrimSpace(r.FormValue("observacoesIniciais")),
	}
	typed := req

	var (
		saved *models.Visit
		err   error
	)
	if id > 0 {
		saved, err = h.Visits.Update(r.Context(), id, &req)
	} else {
		saved, err = h.Visits.Create(r.Context(), &req)
	}
	if err != nil {
		title := "Novo Atendimento"
		if id > 0 {
			title = "Editar Atendimento"
		}
		h.showForm(w, r, title, id, typed, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/atendimentos/%d", saved.ID), "salvo")
}

func (h *VisitHandler) showForm(w http.ResponseWriter, r *http.Request, title string, id int, form models.VisitRequest, formErr error) {
	patients, err := h.Patients.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dentists, err := h.Users.Dentists(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, title, "/atendimentos")
	p.Data = visitFormView{ID: id, Form: form, Patients: patients, Dentists: dentists, Types: models.VisitTypes()}
	if formErr != nil {
		h.form(w, r, "visit_form.html", p, formErr)
		return
	}
	h.render(w, "visit_form.html", p)
}

type visitDetailView struct {
	Visit      *models.Visit
	Procedures []models.Procedure
	Payments   []models.Payment
}

func (h *VisitHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Visits.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	procs, err := h.Procedures.ForVisit(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	payments, err := h.Payments.ForVisit(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, fmt.Sprintf("Atendimento #%d", id), "/atendimentos")
	p.Data = visitDetailView{Visit: v, Procedures: procs, Payments: payments}
	h.render(w, "visit_detail.html", p)
}

func (h *VisitHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "iniciado", h.Visits.Start)
}

func (h *VisitHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancelado", h.Visits.Cancel)
}

func (h *VisitHandler) transition(w http.ResponseWriter, r *http.Request, notice string, action func(ctx context.Context, id int) (*models.Visit, error)) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := action(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, fmt.Sprintf("/atendimentos/%d", id)), notice)
}

type finishFormView struct {
	Visit   *models.Visit
	Form    models.FinishVisitRequest
	Catalog []models.Procedure
}

// Blank is the number of empty procedure rows offered below the filled ones.
func (v finishFormView) Blank() []int {
	n := 3 - len(v.Form.Procedures)
	if n < 1 {
		n = 1
	}
	return make([]int, n)
}

func (h *VisitHandler) FinishForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.showFinish(w, r, id, models.FinishVisitRequest{}, nil)
}

// Finish closes the visit with the clinical notes and performed procedures.
// Procedure rows come as parallel procedimentoId/denteNumero/procObs fields.
func (h *VisitHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.FinishVisitRequest{
		Diagnosis:       strings.TrimSpace(r.FormValue("diagnostico")),
		Prescription:    strings.TrimSpace(r.FormValue("prescricao")),
		FinalNotes:      strings.TrimSpace(r.FormValue("observacoesFinais")),
		SuggestedReturn: r.FormValue("dataRetornoSugerida"),
		Procedures:      procedureRows(r),
	}
	if _, err := h.Visits.Finish(r.Context(), id, &req); err != nil {
		h.showFinish(w, r, id, req, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/atendimentos/%d", id), "finalizado")
}

func procedureRows(r *http.Request) []models.VisitProcedureRequest {
	ids := r.Form["procedimentoId"]
	teeth := r.Form["denteNumero"]
	notes := r.Form["procObs"]

	var rows []models.VisitProcedureRequest
	for i, raw := range ids {
		pid, err := strconv.Atoi(raw)
		if err != nil || pid <= 0 {
			continue
		}
		row := models.VisitProcedureRequest{ProcedureID: pid}
		if i < len(teeth) {
			if n, err := strconv.Atoi(strings.TrimSpace(teeth[i])); err == nil && n > 0 {
				row.ToothNumber = &n
			}
		}
		if i < len(notes) {
			row.Notes = strings.TrimSpace(notes[i])
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *VisitHandler) showFinish(w http.ResponseWriter, r *http.Request, id int, form models.FinishVisitRequest, formErr error) {
	v, err := h.Visits.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	catalog, err := h.Procedures.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, "Finalizar Atendimento", "/atendimentos")
	p.Data = finishFormView{Visit: v, Form: form, Catalog: catalog}
	if formErr != nil {
		h.form(w, r, "visit_finish.html", p, formErr)
		return
	}
	h.render(w, "visit_finish.html", p)
}

// Reschedule moves a visit to novaDataHora and returns to where it came from.
func (h *VisitHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.Visits.Reschedule(r.Context(), id, r.FormValue("novaDataHora")); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, fmt.Sprintf("/atendimentos/%d", id)), "reagendado")
}

func (h *VisitHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/atendimentos", Confirm{
		Heading: "Excluir atendimento",
		Message: fmt.Sprintf("Tem certeza que deseja excluir o atendimento #%d?", id),
		Action:  fmt.Sprintf("/atendimentos/%d/excluir", id),
		Cancel:  fmt.Sprintf("/atendimentos/%d", id),
		Button:  "Excluir",
	})
}

func (h *VisitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Visits.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/atendimentos", "excluido")
}

// backTo honours a local "volta" form value so actions can return to the agenda.
func backTo(r *http.Request, fallback string) string {
	back := r.FormValue("volta")
	if strings.HasPrefix(back, "/") && !strings.HasPrefix(back, "//") {
		return back
	}
	return fallback
}
