package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
)

type UserHandler struct {
	*Base
	Users *services.UserService
}

func NewUserHandler(base *Base, users *services.UserService) *UserHandler {
	return &UserHandler{Base: base, Users: users}
}

type userListView struct {
	Filter services.UserFilter
	Roles  []models.Role
	Users  []models.User
	Total  int
}

// List shows staff accounts. The status filter starts on active accounts.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.UserFilter{
		Term:   q.Get("q"),
		Role:   models.Role(q.Get("cargo")),
		Active: "true",
	}
	if _, set := q["ativo"]; set {
		f.Active = q.Get("ativo")
	}

	users, err := h.Users.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p := NewPage(r, "Usuários", "/usuarios")
	p.Data = userListView{
		Filter: f,
		Roles:  models.Roles(),
		Users:  services.FilterUsers(users, f),
		Total:  len(users),
	}
	h.render(w, "users.html", p)
}

type userFormView struct {
	ID    int
	Form  models.UpdateUserRequest
	Roles []models.Role
}

func (v userFormView) Action() string {
	if v.ID > 0 {
		return fmt.Sprintf("/usuarios/%d", v.ID)
	}
	return "/usuarios"
}

func (h *UserHandler) New(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, userFormView{Form: models.UpdateUserRequest{Role: models.RoleReceptionist}}, nil)
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.showForm(w, r, userFormView{
		ID:   id,
		Form: models.UpdateUserRequest{Name: u.Name, Email: u.Email, Role: u.Role},
	}, nil)
}

// Save creates or updates an account. The password is never echoed back.
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	form := models.UpdateUserRequest{
		Name:     strings.TrimSpace(r.FormValue("nome")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("senha"),
		Role:     models.Role(r.FormValue("cargo")),
	}
	view := userFormView{ID: id, Form: form}
	view.Form.Password = ""

	if form.Password != r.FormValue("confirmarSenha") {
		h.showForm(w, r, view, &services.InputError{Field: "confirmarSenha", Message: "As senhas não conferem."})
		return
	}

	var err error
	if id > 0 {
		_, err = h.Users.Update(r.Context(), id, &form)
	} else {
		_, err = h.Users.Create(r.Context(), &models.RegisterRequest{
			Name:     form.Name,
			Email:    form.Email,
			Password: form.Password,
			Role:     form.Role,
		})
	}
	if err != nil {
		h.showForm(w, r, view, err)
		return
	}
	redirect(w, r, "/usuarios", "salvo")
}

func (h *UserHandler) showForm(w http.ResponseWriter, r *http.Request, v userFormView, formErr error) {
	v.Roles = models.Roles()
	title := "Novo Usuário"
	if v.ID > 0 {
		title = "Editar Usuário"
	}
	p := NewPage(r, title, "/usuarios")
	p.Data = v
	if formErr != nil {
		h.form(w, r, "user_form.html", p, formErr)
		return
	}
	h.render(w, "user_form.html", p)
}

func (h *UserHandler) ConfirmToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	verb, button := "desativar", "Desativar"
	if !u.Active {
		verb, button = "ativar", "Ativar"
	}
	h.confirm(w, r, "/usuarios", Confirm{
		Heading: button + " usuário",
		Message: fmt.Sprintf("Tem certeza que deseja %s o usuário \"%s\"?", verb, u.Name),
		Action:  fmt.Sprintf("/usuarios/%d/status", id),
		Cancel:  "/usuarios",
		Button:  button,
	})
}

func (h *UserHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.Users.ToggleActive(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/usuarios", "status")
}

func (h *UserHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, "/usuarios", Confirm{
		Heading: "Excluir usuário",
		Message: fmt.Sprintf("Tem certeza que deseja excluir o usuário \"%s\"? Esta ação não pode ser desfeita.", u.Name),
		Action:  fmt.Sprintf("/usuarios/%d/excluir", id),
		Cancel:  "/usuarios",
		Button:  "Excluir",
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/usuarios", "excluido")
}
