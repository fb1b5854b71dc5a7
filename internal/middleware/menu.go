package middleware

import "odonto-console/internal/models"

// MenuItem is one sidebar entry.
type MenuItem struct {
	Path  string
	Label string
	Icon  string
	roles []models.Role
}

var (
	everyone     = []models.Role{models.RoleAdmin, models.RoleDentist, models.RoleReceptionist}
	clinicalOnly = []models.Role{models.RoleAdmin, models.RoleDentist}
	adminOnly    = []models.Role{models.RoleAdmin}
)

var sidebar = []MenuItem{
	{Path: "/dashboard", Label: "Dashboard", Icon: "home", roles: clinicalOnly},
	{Path: "/pacientes", Label: "Pacientes", Icon: "users", roles: everyone},
	{Path: "/atendimentos", Label: "Atendimentos", Icon: "calendar", roles: everyone},
	{Path: "/agendas", Label: "Agendas", Icon: "calendar", roles: everyone},
	{Path: "/odontograma", Label: "Odontograma", Icon: "activity", roles: everyone},
	{Path: "/procedimentos", Label: "Procedimentos", Icon: "file-text", roles: clinicalOnly},
	{Path: "/pagamentos", Label: "Pagamentos", Icon: "dollar-sign", roles: everyone},
	{Path: "/inadimplentes", Label: "Inadimplentes", Icon: "alert-triangle", roles: everyone},
	{Path: "/relatorios", Label: "Relatórios", Icon: "bar-chart", roles: clinicalOnly},
	{Path: "/usuarios", Label: "Usuários", Icon: "user-cog", roles: adminOnly},
}

// MenuFor lists the sidebar entries visible to role, in display order.
func MenuFor(role models.Role) []MenuItem {
	var out []MenuItem
	for _, item := range sidebar {
		if item.Allows(role) {
			out = append(out, item)
		}
	}
	return out
}

func (m MenuItem) Allows(role models.Role) bool {
	for _, r := range m.roles {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns the roles allowed on a sidebar path, for route gating.
func RolesFor(path string) []models.Role {
	for _, item := range sidebar {
		if item.Path == path {
			return item.roles
		}
	}
	return nil
}
