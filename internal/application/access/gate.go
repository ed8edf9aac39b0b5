// Package access decides whether a session may render a view.
package access

import (
	"github.com/frankincense-labs/cx-management/internal/application/identity"
	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
)

const (
	LoginPath             = "/login"
	RegisterPath          = "/register"
	CustomerDashboardPath = "/customer/dashboard"
	AdminDashboardPath    = "/admin/dashboard"
)

type Outcome string

const (
	OutcomeLoading  Outcome = "loading"
	OutcomeRedirect Outcome = "redirect"
	OutcomeAllow    Outcome = "allow"
)

// Decision is the result of gating a view.
type Decision struct {
	Outcome    Outcome `json:"outcome"`
	RedirectTo string  `json:"redirectTo,omitempty"`
}

func Loading() Decision           { return Decision{Outcome: OutcomeLoading} }
func Allow() Decision             { return Decision{Outcome: OutcomeAllow} }
func Redirect(to string) Decision { return Decision{Outcome: OutcomeRedirect, RedirectTo: to} }

// DashboardFor returns the landing view of role.
func DashboardFor(role vo.Role) string {
	if role.IsAdmin() {
		return AdminDashboardPath
	}
	return CustomerDashboardPath
}

// Decide gates a view that requires requiredRole. An empty requiredRole
// accepts any signed-in principal. A provisional role is allowed
// optimistically; the redirect to the right dashboard follows once the role
// is confirmed.
func Decide(state identity.State, requiredRole vo.Role) Decision {
	switch state.Phase {
	case identity.PhaseUnknown:
		return Loading()
	case identity.PhaseSignedOut:
		return Redirect(LoginPath)
	}
	if state.Principal == nil {
		return Redirect(LoginPath)
	}

	role := state.Principal.Role
	if !role.IsConfirmed() || requiredRole == "" {
		return Allow()
	}
	if role.Role() != requiredRole {
		return Redirect(DashboardFor(role.Role()))
	}
	return Allow()
}
