// Package guard decides whether a view may be rendered for the current session.
package guard

import "github.com/marketingcrm/portal/internal/core/domain"

// Decision is the outcome of a route check.
type Decision int

const (
	Allow Decision = iota
	Deny
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Route describes how a view is protected.
type Route struct {
	RequiresAuth bool
	ShowNav      bool
}

// Outcome is what the router does with a request.
type Outcome struct {
	Decision Decision
	// Redirect is set on Deny.
	Redirect string
	// Nav is the navigation chrome to render alongside an allowed view.
	Nav []NavItem
}

// Evaluate is a pure function of the session and the route: protected
// routes are allowed iff a session exists, whatever the route is.
func Evaluate(s *domain.Session, r Route) Outcome {
	if r.RequiresAuth && s == nil {
		return Outcome{Decision: Deny, Redirect: domain.LandingRoute}
	}
	out := Outcome{Decision: Allow}
	if r.ShowNav && s != nil {
		out.Nav = Navigation(s.Role)
	}
	return out
}
