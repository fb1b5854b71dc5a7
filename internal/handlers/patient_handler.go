package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/validators"
)

type PatientHandler struct {
	*Base
	Patients     *services.PatientService
	Visits       *services.VisitService
	Payments     *services.PaymentService
	Installments *services.InstallmentService
	Users        *services.UserService
}

func NewPatientHandler(base *Base, patients *services.PatientService, visits *services.VisitService,
	payments *services.PaymentService, installments *services.InstallmentService, users *services.UserService) *PatientHandler {
	return &PatientHandler{
		Base:         base,
		Patients:     patients,
		Visits:       visits,
		Payments:     payments,
		Installments: installments,
		Users:        users,
	}
}

type patientListView struct {
	Term     string
	Patients []models.Patient
	Total    int
}

// List serves the patient list with the name/CPF search.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Patients.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	term := r.URL.Query().Get("q")
	p := NewPage(r, "Pacientes", "/pacientes")
	p.Data = patientListView{Term: term, Patients: services.FilterPatients(all, term), Total: len(all)}
	h.render(w, "patients.html", p)
}

type patientFormView struct {
	ID       int
	Form     models.PatientRequest
	Dentists []models.User
	Patients []models.Patient
}

func (v patientFormView) Action() string {
	if v.ID > 0 {
		return fmt.Sprintf("/pacientes/%d", v.ID)
	}
	return "/pacientes"
}

func (h *PatientHandler) New(w http.ResponseWriter, r *http.Request) {
	v, err := h.formView(r, 0, models.PatientRequest{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, "Novo Paciente", "/pacientes")
	p.Data = v
	h.render(w, "patient_form.html", p)
}

func (h *PatientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pt, err := h.Patients.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.PatientRequest{
		Name:              pt.Name,
		BirthDate:         dateOnly(pt.BirthDate),
		CPF:               validators.FormatCPF(pt.CPF),
		Phone:             validators.FormatPhone(pt.Phone),
		Email:             pt.Email,
		Address:           pt.Address,
		Notes:             pt.Notes,
		DeclaresIncomeTax: pt.DeclaresIncomeTax,
		DentistID:         refID(pt.DentistID, userID(pt.Dentist)),
		FatherID:          refID(pt.FatherID, patientID(pt.Father)),
		MotherID:          refID(pt.MotherID, patientID(pt.Mother)),
		SpouseID:          refID(pt.SpouseID, patientID(pt.Spouse)),
	}
	v, err := h.formView(r, id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, "Editar Paciente", "/pacientes")
	p.Data = v
	h.render(w, "patient_form.html", p)
}

// Save creates or, with an id in the path, updates a patient.
func (h *PatientHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	req := models.PatientRequest{
		Name:              r.FormValue("nome"),
		BirthDate:         r.FormValue("dataNascimento"),
		CPF:               strings.TrimSpace(r.FormValue("cpf")),
		Phone:             strings.TrimSpace(r.FormValue("telefone")),
		Email:             r.FormValue("email"),
		Address:           strings.TrimSpace(r.FormValue("endereco")),
		Notes:             strings.TrimSpace(r.FormValue("observacoes")),
		DeclaresIncomeTax: formBool(r, "declaraIr"),
		DentistID:         formOptionalInt(r, "dentistaResponsavelId"),
		FatherID:          formOptionalInt(r, "paiId"),
		MotherID:          formOptionalInt(r, "maeId"),
		SpouseID:          formOptionalInt(r, "conjugeId"),
	}
	typed := req

	var (
		saved *models.Patient
		err   error
	)
	if id > 0 {
		saved, err = h.Patients.Update(r.Context(), id, &req)
	} else {
		saved, err = h.Patients.Create(r.Context(), &req)
	}
	if err != nil {
		v, verr := h.formView(r, id, typed)
		if verr != nil {
			h.fail(w, r, verr)
			return
		}
		title := "Novo Paciente"
		if id > 0 {
			title = "Editar Paciente"
		}
		p := NewPage(r, title, "/pacientes")
		p.Data = v
		h.form(w, r, "patient_form.html", p, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/pacientes/%d", saved.ID), "salvo")
}

type patientDetailView struct {
	Patient      *models.Patient
	Visits       []models.Visit
	Payments     []models.Payment
	Pending      []models.Installment
	PendingTotal float64
}

// Detail shows the patient with their visits, payments and what is still owed.
func (h *PatientHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx := r.Context()
	pt, err := h.Patients.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	visits, err := h.Visits.PatientHistory(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	payments, err := h.Payments.ForPatient(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pending, err := h.Installments.PendingForPatient(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	services.SortVisits(visits)

	p := NewPage(r, pt.Name, "/pacientes")
	p.Data = patientDetailView{
		Patient:      pt,
		Visits:       visits,
		Payments:     payments,
		Pending:      pending,
		PendingTotal: services.PendingTotal(pending),
	}
	h.render(w, "patient_detail.html", p)
}

func (h *PatientHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pt, err := h.Patients.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/pacientes", Confirm{
		Heading: "Excluir paciente",
		Message: fmt.Sprintf("Tem certeza que deseja excluir o paciente %s?", pt.Name),
		Action:  fmt.Sprintf("/pacientes/%d/excluir", id),
		Cancel:  fmt.Sprintf("/pacientes/%d", id),
		Button:  "Excluir",
	})
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Patients.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/pacientes", "excluido")
}

func (h *PatientHandler) formView(r *http.Request, id int, form models.PatientRequest) (patientFormView, error) {
	dentists, err := h.Users.Dentists(r.Context())
	if err != nil {
		return patientFormView{}, err
	}
	patients, err := h.Patients.List(r.Context())
	if err != nil {
		return patientFormView{}, err
	}
	// a patient cannot be their own relative
	others := patients[:0:0]
	for _, pt := range patients {
		if pt.ID != id {
			others = append(others, pt)
		}
	}
	return patientFormView{ID: id, Form: form, Dentists: dentists, Patients: others}, nil
}

func refID(id *int, fallback int) *int {
	if id != nil {
		return id
	}
	if fallback > 0 {
		return &fallback
	}
	return nil
}

func userID(u *models.User) int {
	if u == nil {
		return 0
	}
	return u.ID
}

func patientID(p *models.Patient) int {
	if p == nil {
		return 0
	}
	return p.ID
}

// dateOnly trims a backend timestamp to the value an <input type=date> accepts.
func dateOnly(v string) string {
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}
