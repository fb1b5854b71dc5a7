package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
)

type ProcedureHandler struct {
	*Base
	Procedures *services.ProcedureService
}

func NewProcedureHandler(base *Base, procedures *services.ProcedureService) *ProcedureHandler {
	return &ProcedureHandler{Base: base, Procedures: procedures}
}

type procedureListView struct {
	Term       string
	Procedures []models.Procedure
}

// List shows the catalog alphabetically, optionally narrowed by name.
func (h *ProcedureHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	all, err := h.Procedures.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	var list []models.Procedure
	for _, p := range all {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			list = append(list, p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) })

	p := NewPage(r, "Procedimentos", "/procedimentos")
	p.Data = procedureListView{Term: term, Procedures: list}
	h.render(w, "procedures.html", p)
}

type procedureFormView struct {
	ID   int
	Form models.ProcedureRequest
}

func (v procedureFormView) Action() string {
	if v.ID > 0 {
		return fmt.Sprintf("/procedimentos/%d", v.ID)
	}
	return "/procedimentos"
}

func (h *ProcedureHandler) New(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, procedureFormView{}, nil)
}

func (h *ProcedureHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	proc, err := h.Procedures.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.showForm(w, r, procedureFormView{ID: id, Form: models.ProcedureRequest{
		Name:        proc.Name,
		Description: proc.Description,
		Price:       proc.Price,
		Notes:       proc.Notes,
	}}, nil)
}

func (h *ProcedureHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	req := models.ProcedureRequest{
		Name:        r.FormValue("nome"),
		Description: strings.TrimSpace(r.FormValue("descricao")),
		Price:       formMoney(r, "preco"),
		Notes:       strings.TrimSpace(r.FormValue("observacoes")),
	}
	typed := req

	var err error
	if id > 0 {
		_, err = h.Procedures.Update(r.Context(), id, &req)
	} else {
		_, err = h.Procedures.Create(r.Context(), &req)
	}
	if err != nil {
		h.showForm(w, r, procedureFormView{ID: id, Form: typed}, err)
		return
	}
	redirect(w, r, "/procedimentos", "salvo")
}

func (h *ProcedureHandler) showForm(w http.ResponseWriter, r *http.Request, v procedureFormView, formErr error) {
	title := "Novo Procedimento"
	if v.ID > 0 {
		title = "Editar Procedimento"
	}
	p := NewPage(r, title, "/procedimentos")
	p.Data = v
	if formErr != nil {
		h.form(w, r, "procedure_form.html", p, formErr)
		return
	}
	h.render(w, "procedure_form.html", p)
}

func (h *ProcedureHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	proc, err := h.Procedures.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/procedimentos", Confirm{
		Heading: "Excluir procedimento",
		Message: fmt.Sprintf("Tem certeza que deseja excluir o procedimento \"%s\"?", proc.Name),
		Action:  fmt.Sprintf("/procedimentos/%d/excluir", id),
		Cancel:  "/procedimentos",
		Button:  "Excluir",
	})
}

func (h *ProcedureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Procedures.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/procedimentos", "excluido")
}
