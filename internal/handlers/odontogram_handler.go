package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/odontogram"
	"odonto-console/internal/services"
)

type OdontogramHandler struct {
	*Base
	Charts   *services.OdontogramService
	Patients *services.PatientService
}

func NewOdontogramHandler(base *Base, charts *services.OdontogramService, patients *services.PatientService) *OdontogramHandler {
	return &OdontogramHandler{Base: base, Charts: charts, Patients: patients}
}

type odontogramView struct {
	Patients  []models.Patient
	PatientID int
	Patient   *models.Patient
	// Pending is set when the chart could not be fetched; the view keeps
	// showing its loading message.
	Pending  bool
	Chart    *odontogram.State
	Summary  odontogram.Summary
	Selected *odontogram.Slot
	History  []models.ToothRecord
	// HistoryPending marks a tooth history that could not be fetched.
	HistoryPending bool
	CanEdit  bool
	Form     models.ToothRecordRequest
	Statuses []models.ToothStatus
	Faces    []models.Face
}

// Show renders the chart of ?paciente and, with ?dente, that tooth's form and history.
func (h *OdontogramHandler) Show(w http.ResponseWriter, r *http.Request) {
	patientID := formInt(r, "paciente")
	v, err := h.load(r, patientID, formInt(r, "dente"))
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		h.Logger.Warn().Err(err).Msg("odontogram load failed")
		v = h.pendingView(r, patientID)
	}
	if v.Selected != nil && v.Selected.Latest != nil {
		v.Form = prefill(v.Selected.Latest)
	}
	p := NewPage(r, "Odontograma", "/odontograma")
	p.Data = v
	h.render(w, "odontogram.html", p)
}

// Record appends one entry and redirects so the chart is fetched again.
func (h *OdontogramHandler) Record(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.ToothRecordRequest{
		PatientID:   formInt(r, "paciente"),
		ToothNumber: formInt(r, "dente"),
		Status:      models.ToothStatus(r.FormValue("status")),
		Procedure:   strings.TrimSpace(r.FormValue("procedimento")),
		Notes:       strings.TrimSpace(r.FormValue("observacoes")),
	}
	for _, f := range r.Form["faces"] {
		req.SetFace(models.Face(f), true)
	}
	typed := req

	_, err := h.Charts.Record(r.Context(), user, &req)
	if err == nil {
		redirect(w, r, fmt.Sprintf("/odontograma?paciente=%d&dente=%d", req.PatientID, req.ToothNumber), "registrado")
		return
	}
	if h.expired(w, r, err) {
		return
	}

	v, lerr := h.load(r, typed.PatientID, typed.ToothNumber)
	if lerr != nil {
		if h.expired(w, r, lerr) {
			return
		}
		h.Logger.Warn().Err(lerr).Int("patient_id", typed.PatientID).Msg("odontogram reload failed")
		v = h.pendingView(r, typed.PatientID)
	}
	v.Form = typed
	p := NewPage(r, "Odontograma", "/odontograma")
	p.Data = v

	status := statusFor(err)
	switch {
	case errors.Is(err, services.ErrChartReadOnly):
		status = http.StatusForbidden
		p.Error = services.ErrChartReadOnly.Message
	case isInput(err), isRejected(err):
		p.Error = h.message(r, err)
	default:
		h.message(r, err)
		p.Error = "Erro ao salvar odontograma."
	}
	h.Pages.Render(w, status, "odontogram.html", p)
}

func (h *OdontogramHandler) load(r *http.Request, patientID, tooth int) (*odontogramView, error) {
	ctx := r.Context()
	user := currentUser(r)

	patients, err := h.Patients.List(ctx)
	if err != nil {
		return nil, err
	}
	v := &odontogramView{
		Patients:  patients,
		PatientID: patientID,
		CanEdit:   user.Role.CanEditChart(),
		Statuses:  models.ToothStatuses(),
		Faces:     models.AllFaces(),
		Form:      models.ToothRecordRequest{PatientID: patientID, ToothNumber: tooth, Status: models.ToothHealthy},
	}
	if patientID <= 0 {
		return v, nil
	}
	for i := range patients {
		if patients[i].ID == patientID {
			v.Patient = &patients[i]
		}
	}

	chart, err := h.Charts.Chart(ctx, patientID)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return nil, err
		}
		h.Logger.Warn().Err(err).Int("patient_id", patientID).Msg("odontogram fetch failed")
		v.Pending = true
		return v, nil
	}
	v.Chart = chart
	v.Summary = chart.Summary()

	if slot, ok := chart.Slot(tooth); ok {
		v.Selected = &slot
		history, err := h.Charts.ToothHistory(ctx, patientID, tooth)
		switch {
		case errors.Is(err, api.ErrSessionExpired):
			return nil, err
		case err != nil:
			h.Logger.Warn().Err(err).Int("patient_id", patientID).Int("tooth", tooth).Msg("tooth history fetch failed")
			v.HistoryPending = true
		default:
			v.History = history
		}
	}
	return v, nil
}

// pendingView keeps the chart page usable when even the patient list failed.
func (h *OdontogramHandler) pendingView(r *http.Request, patientID int) *odontogramView {
	return &odontogramView{
		PatientID: patientID,
		Pending:   true,
		CanEdit:   currentUser(r).Role.CanEditChart(),
		Statuses:  models.ToothStatuses(),
		Faces:     models.AllFaces(),
	}
}

func prefill(rec *models.ToothRecord) models.ToothRecordRequest {
	req := models.ToothRecordRequest{
		PatientID:   rec.Patient.ID,
		ToothNumber: rec.ToothNumber,
		Status:      rec.Status,
		Procedure:   rec.Procedure,
		Notes:       rec.Notes,
	}
	for _, f := range rec.Faces() {
		req.SetFace(f, true)
	}
	return req
}

func isInput(err error) bool {
	var input *services.InputError
	return errors.As(err, &input)
}

// isRejected matches a backend 4xx that carries a message for the user.
func isRejected(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Validation()
}
