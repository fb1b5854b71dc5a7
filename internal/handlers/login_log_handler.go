package handlers

import (
	"context"
	"net/http"

	"odonto-console/internal/models"
)

const loginLogLimit = 200

// LoginLogs is the audit trail kept by the Postgres session store.
type LoginLogs interface {
	ListRecent(ctx context.Context, limit int) ([]*models.LoginLog, error)
}

type LoginLogHandler struct {
	*Base
	Repo LoginLogs
}

// NewLoginLogHandler accepts a nil repo; the page then explains that the
// audit trail is off.
func NewLoginLogHandler(base *Base, repo LoginLogs) *LoginLogHandler {
	return &LoginLogHandler{Base: base, Repo: repo}
}

type loginLogView struct {
	Enabled bool
	Logs    []*models.LoginLog
}

// ListLoginLogs shows the newest sign-in and sign-out events
func (h *LoginLogHandler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	p := NewPage(r, "Acessos", "/usuarios")
	v := loginLogView{Enabled: h.Repo != nil}
	p.Data = &v
	if h.Repo != nil {
		logs, err := h.Repo.ListRecent(r.Context(), loginLogLimit)
		if err != nil {
			h.Logger.Error().Err(err).Msg("failed to list login logs")
			p.Error = "Não foi possível carregar o registro de acessos."
			h.Pages.Render(w, http.StatusInternalServerError, "login_logs.html", p)
			return
		}
		v.Logs = logs
	}
	h.render(w, "login_logs.html", p)
}
