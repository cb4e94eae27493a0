// Package authz maps roles to the dashboard routes they may open. The SPA
// renders its navigation and route guards from this table via the
// /api/auth/routes endpoint, so client and server agree on one source of
// truth. The check is advisory at the HTTP layer; protected APIs still
// enforce their own role requirements.
package authz

import "github.com/iwc-recycling/accounts-api/internal/core/domain"

// Route is one navigable dashboard entry for a role.
type Route struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

const homePath = "/"

var dashboardPaths = map[domain.Role]string{
	domain.RoleAdmin:     "/iwc",
	domain.RoleSales:     "/sales-dashboard",
	domain.RoleFinance:   "/finance-dashboard",
	domain.RoleInvestor:  "/investor-portal",
	domain.RoleDeveloper: "/dev-console",
	domain.RolePartner:   "/partner-dashboard",
}

var roleRoutes = map[domain.Role][]Route{
	domain.RoleAdmin: {
		{Path: "/iwc", Label: "Admin Dashboard"},
	},
	domain.RoleSales: {
		{Path: "/sales-dashboard", Label: "Sales Dashboard"},
		{Path: "/client-queries", Label: "Client Queries"},
	},
	domain.RoleFinance: {
		{Path: "/finance-dashboard", Label: "Financial Reports"},
		{Path: "/income-statements", Label: "Income Statements"},
	},
	domain.RoleInvestor: {
		{Path: "/investor-portal", Label: "Investor Portal"},
	},
	domain.RoleDeveloper: {
		{Path: "/dev-console", Label: "Developer Console"},
	},
	domain.RolePartner: {
		{Path: "/partner-dashboard", Label: "Partner Dashboard"},
		{Path: "/analytics", Label: "Analytics"},
	},
}

// DefaultPath returns where a role lands after login. Roles without a
// dashboard (client, unknown) land on home.
func DefaultPath(role domain.Role) string {
	if p, ok := dashboardPaths[role]; ok {
		return p
	}
	return homePath
}

// RoutesFor returns the dashboard routes a role may open. The slice is a
// copy; callers can reorder it freely. Unknown roles get none.
func RoutesFor(role domain.Role) []Route {
	routes := roleRoutes[role]
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Allowed reports whether a role may open the given dashboard path. Home is
// always allowed.
func Allowed(role domain.Role, path string) bool {
	if path == homePath {
		return true
	}
	for _, r := range roleRoutes[role] {
		if r.Path == path {
			return true
		}
	}
	return false
}
