// Package identity tracks who is signed in for one browser session and what
// role they hold. A Store is owned by its session; nothing in this package is
// process-global.
package identity

import (
	"time"

	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
)

// Phase is the coarse authentication state of a session.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseSignedOut
	PhaseSignedIn
)

func (p Phase) String() string {
	switch p {
	case PhaseSignedOut:
		return "signed_out"
	case PhaseSignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// RoleResolution is the two-phase role of a signed-in principal. Until the
// profile record has been read the role is provisional and always customer.
type RoleResolution struct {
	confirmed bool
	role      vo.Role
}

// Unconfirmed is the provisional role used before the profile read completes.
func Unconfirmed() RoleResolution {
	return RoleResolution{role: vo.RoleCustomer}
}

// Confirmed wraps a role read from the profile record.
func Confirmed(role vo.Role) RoleResolution {
	return RoleResolution{confirmed: true, role: role}
}

func (r RoleResolution) IsConfirmed() bool { return r.confirmed }

// Role returns the role, provisional or not. Authorization decisions must
// check IsConfirmed first.
func (r RoleResolution) Role() vo.Role { return r.role }

// Principal describes the signed-in user.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	Method      vo.AuthMethod
	Role        RoleResolution
	SignedInAt  time.Time
}

// State is an immutable snapshot of a Store. Version increases by one on
// every transition.
type State struct {
	Phase     Phase
	Principal *Principal
	Version   uint64
}

func (s State) SignedIn() bool {
	return s.Phase == PhaseSignedIn && s.Principal != nil
}

// ConfirmedRole returns the principal's role when it has been confirmed.
func (s State) ConfirmedRole() (vo.Role, bool) {
	if !s.SignedIn() || !s.Principal.Role.IsConfirmed() {
		return "", false
	}
	return s.Principal.Role.Role(), true
}

// AuthSession is what the credential layer hands back after a successful
// sign-in. It carries no role.
type AuthSession struct {
	PrincipalID string
	Email       string
	Method      vo.AuthMethod
	DisplayName string
	IssuedAt    time.Time
}
