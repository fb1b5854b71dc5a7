package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
)

type PaymentHandler struct {
	*Base
	Payments     *services.PaymentService
	Installments *services.InstallmentService
	Patients     *services.PatientService
	Users        *services.UserService
}

func NewPaymentHandler(base *Base, payments *services.PaymentService, installments *services.InstallmentService,
	patients *services.PatientService, users *services.UserService) *PaymentHandler {
	return &PaymentHandler{
		Base:         base,
		Payments:     payments,
		Installments: installments,
		Patients:     patients,
		Users:        users,
	}
}

type paymentListView struct {
	Filter   services.PaymentFilter
	Start    string
	End      string
	Methods  []models.PaymentMethod
	Payments []models.Payment
	Totals   services.PaymentTotals
}

// List shows the visible payments with the search, method, installment and
// period filters and the totals of what is listed.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(r)
	q := r.URL.Query()
	v := paymentListView{
		Filter: services.PaymentFilter{
			Term:      q.Get("q"),
			Method:    models.PaymentMethod(q.Get("metodo")),
			Installed: q.Get("parcelado"),
		},
		Start:   q.Get("inicio"),
		End:     q.Get("fim"),
		Methods: models.PaymentMethods(),
	}

	var (
		payments []models.Payment
		err      error
	)
	if v.Start != "" && v.End != "" {
		payments, err = h.byPeriod(r, user, v.Start, v.End)
	} else {
		payments, err = h.Payments.Visible(ctx, user)
	}
	p := NewPage(r, "Pagamentos", "/pagamentos")
	p.Data = &v
	if err != nil {
		if isInput(err) {
			h.form(w, r, "payments.html", p, err)
			return
		}
		h.fail(w, r, err)
		return
	}

	v.Payments = services.FilterPayments(payments, v.Filter)
	v.Totals = services.SumPayments(v.Payments)
	h.render(w, "payments.html", p)
}

func (h *PaymentHandler) byPeriod(r *http.Request, user *models.User, start, end string) ([]models.Payment, error) {
	from, err := timeutil.ParseDate(start)
	if err != nil {
		return nil, &services.InputError{Field: "inicio", Message: "Data inicial inválida"}
	}
	to, err := timeutil.ParseDate(end)
	if err != nil || to.Before(from) {
		return nil, &services.InputError{Field: "fim", Message: "Data final inválida"}
	}
	a := timeutil.StartOfDay(from).Format(timeutil.DateTimeLayout)
	b := timeutil.EndOfDay(to).Format(timeutil.DateTimeLayout)
	if user.Role == models.RoleDentist {
		return h.Payments.ForDentistPeriod(r.Context(), user.ID, a, b)
	}
	return h.Payments.Period(r.Context(), a, b)
}

type paymentFormView struct {
	Form     models.PaymentRequest
	Patients []models.Patient
	Dentists []models.User
	Methods  []models.PaymentMethod
}

func (h *PaymentHandler) New(w http.ResponseWriter, r *http.Request) {
	form := models.PaymentRequest{
		PatientID: formInt(r, "paciente"),
		VisitID:   formOptionalInt(r, "atendimento"),
		Method:    models.MethodPix,
	}
	if user := currentUser(r); user.Role == models.RoleDentist {
		form.DentistID = user.ID
	}
	h.showForm(w, r, form, nil)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := models.PaymentRequest{
		PatientID:        formInt(r, "pacienteId"),
		DentistID:        formInt(r, "dentistaId"),
		VisitID:          formOptionalInt(r, "atendimentoId"),
		Total:            formMoney(r, "valorTotal"),
		Method:           models.PaymentMethod(r.FormValue("metodoPagamento")),
		Installed:        formBool(r, "parcelado"),
		InstallmentCount: formInt(r, "numeroParcelas"),
		Notes:            strings.TrimSpace(r.FormValue("observacoes")),
	}
	typed := req
	saved, err := h.Payments.Create(r.Context(), &req)
	if err != nil {
		h.showForm(w, r, typed, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/pagamentos/%d", saved.ID), "salvo")
}

func (h *PaymentHandler) showForm(w http.ResponseWriter, r *http.Request, form models.PaymentRequest, formErr error) {
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
	p := NewPage(r, "Novo Pagamento", "/pagamentos")
	p.Data = paymentFormView{Form: form, Patients: patients, Dentists: dentists, Methods: models.PaymentMethods()}
	if formErr != nil {
		h.form(w, r, "payment_form.html", p, formErr)
		return
	}
	h.render(w, "payment_form.html", p)
}

type paymentDetailView struct {
	Payment      *models.Payment
	Installments []models.Installment
	Paid         float64
	Pending      float64
	CanReverse   bool
}

// Detail shows a payment with its installments and the pay/reverse actions.
func (h *PaymentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pay, err := h.Payments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.Installments.ForPayment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, fmt.Sprintf("Pagamento #%d", id), "/pagamentos")
	p.Data = paymentDetailView{
		Payment:      pay,
		Installments: items,
		Paid:         services.PaidTotal(items),
		Pending:      services.PendingTotal(items),
		CanReverse:   services.HasPaid(items),
	}
	h.render(w, "payment_detail.html", p)
}

func (h *PaymentHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pay, err := h.Payments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/pagamentos", Confirm{
		Heading: "Excluir pagamento",
		Message: fmt.Sprintf("Tem certeza que deseja excluir o pagamento do paciente \"%s\"? Esta ação não pode ser desfeita e todas as parcelas serão removidas.", pay.PatientName()),
		Action:  fmt.Sprintf("/pagamentos/%d/excluir", id),
		Cancel:  fmt.Sprintf("/pagamentos/%d", id),
		Button:  "Excluir",
	})
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Payments.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/pagamentos", "excluido")
}

// Pay marks one installment as paid.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inst, err := h.Installments.Pay(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, paymentPath(inst, r)), "pago")
}

func (h *PaymentHandler) ConfirmReverse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inst, err := h.Installments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/pagamentos", Confirm{
		Heading: "Estornar parcela",
		Message: fmt.Sprintf("Tem certeza que deseja estornar a parcela %d (%s)? Esta ação removerá o pagamento da parcela.",
			inst.Number, validators.FormatBRL(inst.Amount)),
		Action: fmt.Sprintf("/parcelas/%d/estornar", id),
		Cancel: paymentPath(inst, r),
		Button: "Estornar",
	})
}

func (h *PaymentHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inst, err := h.Installments.Reverse(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, backTo(r, paymentPath(inst, r)), "estornado")
}

func (h *PaymentHandler) ConfirmReverseAll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.Installments.ForPayment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail := fmt.Sprintf("/pagamentos/%d", id)
	if !services.HasPaid(items) {
		p := NewPage(r, "Estornar parcelas", "/pagamentos")
		p.Error = "Não há parcelas pagas para estornar."
		p.Data = Confirm{Heading: "Estornar parcelas", Cancel: detail}
		h.Pages.Render(w, http.StatusUnprocessableEntity, "confirm.html", p)
		return
	}
	var paid int
	for _, inst := range items {
		if inst.Status.CanReverse() {
			paid++
		}
	}
	h.confirm(w, r, "/pagamentos", Confirm{
		Heading: "Estornar todas as parcelas",
		Message: fmt.Sprintf("Deseja estornar TODAS as parcelas deste pagamento? Parcelas que serão estornadas: %d. Valor total: %s. Esta ação não pode ser desfeita!",
			paid, validators.FormatBRL(services.PaidTotal(items))),
		Action: fmt.Sprintf("/pagamentos/%d/estornar-todas", id),
		Cancel: detail,
		Button: "Estornar todas",
	})
}

func (h *PaymentHandler) ReverseAll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.Installments.ReverseAll(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, fmt.Sprintf("/pagamentos/%d", id), "estornado")
}

type installmentFormView struct {
	Installment *models.Installment
	Form        models.InstallmentUpdateRequest
}

func (h *PaymentHandler) EditInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inst, err := h.Installments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, fmt.Sprintf("Parcela %d", inst.Number), "/pagamentos")
	p.Data = installmentFormView{
		Installment: inst,
		Form:        models.InstallmentUpdateRequest{Amount: inst.Amount, DueDate: dateOnly(inst.DueDate), Notes: inst.Notes},
	}
	h.render(w, "installment_form.html", p)
}

func (h *PaymentHandler) UpdateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := models.InstallmentUpdateRequest{
		Amount:  formMoney(r, "valorParcela"),
		DueDate: r.FormValue("dataVencimento"),
		Notes:   r.FormValue("observacoes"),
	}
	typed := req
	inst, err := h.Installments.Update(r.Context(), id, &req)
	if err != nil {
		current, gerr := h.Installments.Get(r.Context(), id)
		if gerr != nil {
			h.fail(w, r, gerr)
			return
		}
		p := NewPage(r, fmt.Sprintf("Parcela %d", current.Number), "/pagamentos")
		p.Data = installmentFormView{Installment: current, Form: typed}
		h.form(w, r, "installment_form.html", p, err)
		return
	}
	redirect(w, r, paymentPath(inst, r), "salvo")
}

// paymentPath is the detail page an installment action returns to.
func paymentPath(inst *models.Installment, r *http.Request) string {
	switch {
	case inst.Payment != nil && inst.Payment.ID > 0:
		return fmt.Sprintf("/pagamentos/%d", inst.Payment.ID)
	case inst.PaymentID > 0:
		return fmt.Sprintf("/pagamentos/%d", inst.PaymentID)
	}
	if id := formInt(r, "pagamento"); id > 0 {
		return fmt.Sprintf("/pagamentos/%d", id)
	}
	return "/pagamentos"
}

// Overdue reports whether an unpaid installment is past its due date.
func Overdue(inst models.Installment, now time.Time) bool {
	if !inst.Status.Unpaid() {
		return false
	}
	due, err := timeutil.ParseBackend(inst.DueDate)
	return err == nil && due.Before(timeutil.StartOfDay(now))
}
