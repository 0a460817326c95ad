package guard

import "github.com/marketingcrm/portal/internal/core/domain"

// NavItem is one entry of the navigation bar.
type NavItem struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

var (
	adminNav = []NavItem{
		{Label: "Cerrar Sesión", Href: "/logout", Method: "POST"},
		{Label: "Revisar Pedidos", Href: domain.OrdersRoute},
	}
	userNav = []NavItem{
		{Label: "Mis Pedidos", Href: "/my-requests"},
		{Label: "Mi Perfil", Href: domain.DashboardRoute},
		{Label: "Cerrar Sesión", Href: "/logout", Method: "POST"},
		{Label: "Hacer un Pedido", Href: "/request"},
	}
)

// Navigation returns the navigation bar for a role.
func Navigation(role domain.Role) []NavItem {
	src := userNav
	if role == domain.RoleAdmin {
		src = adminNav
	}
	out := make([]NavItem, len(src))
	copy(out, src)
	return out
}
