package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/middleware"
	"odonto-console/internal/models"
	"odonto-console/internal/odontogram"
	"odonto-console/internal/services"
	"odonto-console/internal/session"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
	"odonto-console/templates"
)

// shared by every page
var layoutFiles = []string{"layout.html", "partials.html"}

// Page is the data every template receives.
type Page struct {
	Title  string
	Active string
	User   *models.User
	Menu   []middleware.MenuItem
	Notice string
	Error  string
	Data   any
}

// PageHandler parses the embedded templates once and renders them.
type PageHandler struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

func NewPageHandler(logger zerolog.Logger) (*PageHandler, error) {
	return newPageHandler(templates.FS, logger)
}

func newPageHandler(files fs.FS, logger zerolog.Logger) (*PageHandler, error) {
	names, err := fs.Glob(files, "*.html")
	if err != nil {
		return nil, err
	}
	h := &PageHandler{
		pages:  make(map[string]*template.Template, len(names)),
		logger: logger.With().Str("component", "pages").Logger(),
	}
	for _, name := range names {
		if isLayout(name) {
			continue
		}
		patterns := append(append([]string{}, layoutFiles...), name)
		t, err := template.New(name).Funcs(templateFuncs()).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

func isLayout(name string) bool {
	for _, l := range layoutFiles {
		if l == name {
			return true
		}
	}
	return false
}

// Render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (h *PageHandler) Render(w http.ResponseWriter, status int, name string, p *Page) {
	t, ok := h.pages[name]
	if !ok {
		h.logger.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Erro interno. Tente novamente.", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "Erro interno. Tente novamente.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Loading is the placeholder shown while the session store bootstraps.
func (h *PageHandler) Loading(w http.ResponseWriter, r *http.Request) {
	h.Render(w, http.StatusServiceUnavailable, "loading.html", &Page{Title: "Carregando"})
}

// NewPage fills the chrome shared by authenticated pages.
func NewPage(r *http.Request, title, active string) *Page {
	p := &Page{Title: title, Active: active, Notice: notices[r.URL.Query().Get("ok")]}
	if s, ok := session.FromContext(r.Context()); ok {
		p.User = s.User
		p.Menu = middleware.MenuFor(s.Role())
	}
	return p
}

// notices are the flash messages selected by ?ok= after a redirect.
var notices = map[string]string{
	"salvo":      "Registro salvo com sucesso.",
	"excluido":   "Registro excluído com sucesso.",
	"iniciado":   "Atendimento iniciado.",
	"finalizado": "Atendimento finalizado.",
	"cancelado":  "Atendimento cancelado.",
	"reagendado": "Atendimento reagendado.",
	"pago":       "Parcela marcada como paga.",
	"estornado":  "Pagamento estornado.",
	"status":     "Status do usuário alterado.",
	"registrado": "Odontograma atualizado.",
}

var monthNames = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"brl":      validators.FormatBRL,
		"date":     validators.FormatDate,
		"datetime": validators.FormatDateTime,
		"hour":     validators.FormatTime,
		"cpf":      validators.FormatCPF,
		"phone":    validators.FormatPhone,
		"age": func(birth string) int {
			return validators.AgeFrom(birth, timeutil.Now())
		},
		"tooth":     odontogram.RenderTooth,
		"color":     odontogram.StatusColor,
		"faceColor": odontogram.FaceBadgeColor,
		"badge": func(p models.Payment) services.PaymentBadge {
			return services.BadgeFor(&p)
		},
		"pct": func(v float64) string {
			return strings.Replace(fmt.Sprintf("%.1f%%", v), ".", ",", 1)
		},
		"isRole": func(u *models.User, roles ...string) bool {
			if u == nil {
				return false
			}
			for _, r := range roles {
				if string(u.Role) == r {
					return true
				}
			}
			return false
		},
		"selected": func(cur, v any) template.HTMLAttr {
			if fmt.Sprint(cur) == fmt.Sprint(v) {
				return "selected"
			}
			return ""
		},
		"checked": func(on bool) template.HTMLAttr {
			if on {
				return "checked"
			}
			return ""
		},
		"month": func(t time.Time) string {
			return fmt.Sprintf("%s de %d", monthNames[t.Month()-1], t.Year())
		},
		"share": func(v, max float64) int {
			if max <= 0 {
				return 0
			}
			return int(v / max * 100)
		},
		"overdue": func(inst models.Installment) bool {
			return Overdue(inst, timeutil.Now())
		},
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	}
}
