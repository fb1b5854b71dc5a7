package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
)

type ReportHandler struct {
	*Base
	ReportService *services.ReportService
	Stats         *services.StatisticsService
}

func NewReportHandler(base *Base, reports *services.ReportService, stats *services.StatisticsService) *ReportHandler {
	return &ReportHandler{Base: base, ReportService: reports, Stats: stats}
}

type reportView struct {
	Comparison *services.MonthComparison
	Methods    []services.Ranked
	Start      string
	End        string
	Year       int
}

// Reports shows this month against the previous one and the export forms.
func (h *ReportHandler) Reports(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	now := timeutil.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, timeutil.BRT)
	v := reportView{
		Start: first.Format(timeutil.DateLayout),
		End:   now.Format(timeutil.DateLayout),
		Year:  now.Year(),
	}
	cmp, err := h.Stats.CompareMonths(r.Context(), user.ID, now)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v.Comparison = cmp
	v.Methods = services.RankDesc(cmp.Current.ByMethod, 0)

	p := NewPage(r, "Relatórios", "/relatorios")
	p.Data = v
	h.render(w, "reports.html", p)
}

// Export streams a CSV generated by the backend as an attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("ano"))
	req := services.ExportRequest{
		Kind:      services.ReportKind(q.Get("tipo")),
		DentistID: currentUser(r).ID,
		Start:     q.Get("inicio"),
		End:       q.Get("fim"),
		Year:      year,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	d, err := h.ReportService.Export(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attachment(w, d.ContentType, d.Filename, d.Body)
}

// Booklet downloads the installment booklet of one payment.
func (h *ReportHandler) Booklet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pdf, name, err := h.ReportService.Booklet(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attachment(w, "application/pdf", name, pdf)
}

// PatientBooklets downloads every booklet of a patient as one zip.
func (h *ReportHandler) PatientBooklets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.ReportService.PatientBooklets(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attachment(w, "application/zip", fmt.Sprintf("carnes_paciente_%d.zip", id), data)
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
