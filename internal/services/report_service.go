package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"odonto-console/internal/api"
	"odonto-console/internal/archive"
	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
)

// ReportKind names a CSV export generated by the backend.
type ReportKind string

const (
	ReportPayments            ReportKind = "pagamentos"
	ReportPendingInstallments ReportKind = "parcelas-pendentes"
	ReportDelinquency         ReportKind = "inadimplencia"
	ReportCashFlow            ReportKind = "fluxo-caixa"
)

func (k ReportKind) Valid() bool {
	switch k {
	case ReportPayments, ReportPendingInstallments, ReportDelinquency, ReportCashFlow:
		return true
	}
	return false
}

// ExportRequest selects one CSV export. Start and End are "2006-01-02" and
// only used by the payments export; Year only by the cash flow export.
type ExportRequest struct {
	Kind      ReportKind
	DentistID int
	Start     string
	End       string
	Year      int
}

func (r ExportRequest) query() (url.Values, error) {
	if !r.Kind.Valid() {
		return nil, invalid("tipo", "Relatório desconhecido")
	}
	q := url.Values{"dentistaId": {itoa(r.DentistID)}}
	switch r.Kind {
	case ReportPayments:
		if r.Start == "" || r.End == "" {
			return nil, invalid("dataInicio", "Selecione o período (início e fim)")
		}
		from, to, err := customRange(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		q.Set("dataInicio", from.Format(timeutil.DateLayout))
		q.Set("dataFim", to.Format(timeutil.DateLayout))
	case ReportCashFlow:
		if r.Year < 2000 || r.Year > 2100 {
			return nil, invalid("ano", "Ano inválido")
		}
		q.Set("ano", itoa(r.Year))
	}
	return q, nil
}

// Filename is the name used when the backend does not send one.
func (r ExportRequest) Filename() string {
	switch r.Kind {
	case ReportPayments:
		return fmt.Sprintf("pagamentos_%s_%s.csv", r.Start, r.End)
	case ReportPendingInstallments:
		return "parcelas_pendentes.csv"
	case ReportDelinquency:
		return "inadimplencia.csv"
	case ReportCashFlow:
		return fmt.Sprintf("fluxo_caixa_%d.csv", r.Year)
	}
	return "relatorio.csv"
}

type ReportService struct {
	API          *api.Client
	Payments     *PaymentService
	Installments *InstallmentService
	Archive      archive.Archiver
	logger       zerolog.Logger
}

// NewReportService wires report generation. archiver may be nil, in which
// case exports are not copied anywhere.
func NewReportService(client *api.Client, payments *PaymentService, installments *InstallmentService, archiver archive.Archiver, logger zerolog.Logger) *ReportService {
	return &ReportService{
		API:          client,
		Payments:     payments,
		Installments: installments,
		Archive:      archiver,
		logger:       logger.With().Str("component", "reports").Logger(),
	}
}

// Export streams a CSV from the backend and, when archiving is enabled, keeps
// a copy in object storage. An archive failure does not fail the download.
func (s *ReportService) Export(ctx context.Context, req ExportRequest) (*api.Download, error) {
	q, err := req.query()
	if err != nil {
		return nil, err
	}

	d, err := s.API.Download(ctx, fmt.Sprintf("/relatorios/%s/csv", req.Kind), q)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", req.Kind, err)
	}
	if d.Filename == "" {
		d.Filename = req.Filename()
	}
	if d.ContentType == "" || strings.HasPrefix(d.ContentType, "application/octet-stream") {
		d.ContentType = "text/csv; charset=utf-8"
	}

	if s.Archive != nil {
		key := archive.Key(string(req.Kind), d.Filename, timeutil.Now())
		if err := s.Archive.Put(ctx, key, d.ContentType, d.Body); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("export not archived")
		} else {
			s.logger.Info().Str("key", key).Int("bytes", len(d.Body)).Msg("export archived")
		}
	}
	return d, nil
}

// Booklet renders the installment booklet (carnê) of one payment.
func (s *ReportService) Booklet(ctx context.Context, paymentID int) ([]byte, string, error) {
	p, err := s.Payments.Get(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	items, err := s.Installments.ForPayment(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := BookletPDF(p, items, timeutil.Now())
	if err != nil {
		return nil, "", err
	}
	return pdf, bookletFilename(p), nil
}

// PatientBooklets zips the booklets of every installment plan of a patient.
func (s *ReportService) PatientBooklets(ctx context.Context, patientID int) ([]byte, error) {
	payments, err := s.Payments.ForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var plans []models.Payment
	for _, p := range payments {
		if p.Installed {
			plans = append(plans, p)
		}
	}
	if len(plans) == 0 {
		return nil, invalid("pacienteId", "Paciente não possui pagamentos parcelados")
	}

	names := make([]string, len(plans))
	pdfs := make([][]byte, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i := range plans {
		i := i
		p := &plans[i]
		g.Go(func() error {
			items, err := s.Installments.ForPayment(gctx, p.ID)
			if err != nil {
				return err
			}
			data, err := BookletPDF(p, items, timeutil.Now())
			if err != nil {
				return err
			}
			names[i], pdfs[i] = bookletFilename(p), data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(plans))
	for i := range names {
		files[names[i]] = pdfs[i]
	}
	return zipFiles(files)
}

func zipFiles(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bookletFilename(p *models.Payment) string {
	return fmt.Sprintf("carne_pagamento_%d.pdf", p.ID)
}

// BookletPDF lays out one coupon per installment below a payment summary.
func BookletPDF(p *models.Payment, items []models.Installment, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr("Consultório Odonto - Carnê de Pagamento"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, tr(fmt.Sprintf("Emitido em: %s", generated.In(timeutil.BRT).Format(timeutil.DisplayDateTime))), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	dentist := ""
	if p.Dentist != nil {
		dentist = p.Dentist.Name
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, tr("Dados do Pagamento"), "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, tr("Paciente: "+p.PatientName()), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Dentista: "+dentist), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Valor total: "+validators.FormatBRL(p.Total)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Forma: "+p.Method.Label()), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Lançamento: "+validators.FormatDate(p.IssuedAt)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr(fmt.Sprintf("Parcelas: %d", len(items))), "RB", 1, "L", false, 0, "")
	pdf.Ln(6)

	for _, inst := range items {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(190, 7, tr(fmt.Sprintf("Parcela %d de %d  -  Pagamento #%d", inst.Number, len(items), p.ID)), "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(63, 8, tr("Vencimento: "+validators.FormatDate(inst.DueDate)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(63, 8, tr("Valor: "+validators.FormatBRL(inst.Amount)), "1", 0, "C", false, 0, "")

		switch {
		case inst.Status == models.InstallmentPaid:
			pdf.SetFillColor(200, 255, 200)
		case inst.Status.Outstanding():
			pdf.SetFillColor(255, 235, 200)
		default:
			pdf.SetFillColor(255, 255, 255)
		}
		status := inst.Status.Label()
		if inst.Status == models.InstallmentPaid && inst.PaidAt != "" {
			status += " em " + validators.FormatDate(inst.PaidAt)
		}
		pdf.CellFormat(64, 8, tr(status), "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(190, 6, tr("- - - - - - - - - - - - - - - - - - - - recorte aqui - - - - - - - - - - - - - - - - - - - -"), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(95, 8, tr("Pago: "+validators.FormatBRL(PaidTotal(items))), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, tr("Em aberto: "+validators.FormatBRL(PendingTotal(items))), "1", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render booklet: %w", err)
	}
	return buf.Bytes(), nil
}
