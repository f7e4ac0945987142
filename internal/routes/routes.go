package routes

import (
	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/internal/session"
)

// Well-known paths. The CLI exposes these as screens; the names mirror the
// backend's web client so support conversations line up.
const (
	PathLogin            = "/login"
	PathRegister         = "/register"
	PathDashboard        = "/dashboard"
	PathMyRequests       = "/my-requests"
	PathNewRequest       = "/new-request"
	PathPendingApprovals = "/pending-approvals"
	PathHRApprovals      = "/hr-approvals"
	PathUsers            = "/users"
	PathHistory          = "/history"
)

// Route pairs a path with the roles allowed to reach it. An empty role set
// means any authenticated principal; Public routes skip authentication
// entirely.
type Route struct {
	Path   string
	Title  string
	Roles  []domain.Role
	Public bool
}

// table is the single routing table. Navigation sets and gate decisions
// both derive from it; adding a screen or a role is a data change here.
var table = []Route{
	{Path: PathLogin, Title: "Login", Public: true},
	{Path: PathRegister, Title: "Register", Public: true},
	{Path: PathDashboard, Title: "Dashboard"},
	{Path: PathMyRequests, Title: "My Leave Requests", Roles: []domain.Role{domain.RoleEmployee}},
	{Path: PathNewRequest, Title: "Request Leave"},
	{Path: PathPendingApprovals, Title: "Team Approvals", Roles: []domain.Role{domain.RoleManager}},
	{Path: PathHRApprovals, Title: "Final Approvals", Roles: []domain.Role{domain.RoleHR}},
	{Path: PathUsers, Title: "User Management", Roles: []domain.Role{domain.RoleHR}},
	{Path: PathHistory, Title: "Approval History", Roles: []domain.Role{domain.RoleManager, domain.RoleHR}},
}

// Lookup returns the route for a path. Unknown paths resolve to the
// dashboard route: wrong addresses are "not found here", not errors.
func Lookup(path string) Route {
	for _, r := range table {
		if r.Path == path {
			return r
		}
	}
	return Route{Path: PathDashboard, Title: "Dashboard"}
}

// Outcome classifies a gate decision.
type Outcome int

const (
	// Loading: the session is not hydrated yet; render nothing and do not
	// redirect, or a valid session would bounce to login before it loads.
	Loading Outcome = iota
	// Render: the principal may see the route.
	Render
	// RedirectLogin: unauthenticated; ReturnTo preserves the requested path.
	RedirectLogin
	// RedirectDashboard: authenticated but the role is not in the route's
	// set.
	RedirectDashboard
)

// Decision is the result of evaluating a route against session state.
type Decision struct {
	Outcome  Outcome
	ReturnTo string
}

// Evaluate decides whether the route at path is reachable for the given
// session state. Pure function; navigation is the caller's business.
func Evaluate(path string, st session.State) Decision {
	route := Lookup(path)
	if route.Public {
		return Decision{Outcome: Render}
	}
	if !st.Initialized {
		return Decision{Outcome: Loading}
	}
	if !st.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, ReturnTo: path}
	}
	if len(route.Roles) > 0 && !roleAllowed(st.User.Role, route.Roles) {
		return Decision{Outcome: RedirectDashboard}
	}
	return Decision{Outcome: Render}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// NavItems returns the navigation set for a role, derived from the same
// table Evaluate uses. Public routes are not navigation items.
func NavItems(role domain.Role) []Route {
	var items []Route
	for _, r := range table {
		if r.Public {
			continue
		}
		if len(r.Roles) == 0 || roleAllowed(role, r.Roles) {
			items = append(items, r)
		}
	}
	return items
}
