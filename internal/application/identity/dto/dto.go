package dto

import (
	"time"

	"github.com/frankincense-labs/cx-management/internal/application/access"
	"github.com/frankincense-labs/cx-management/internal/application/identity"
)

type PrincipalDTO struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	Method        string    `json:"method"`
	Role          string    `json:"role"`
	RoleConfirmed bool      `json:"roleConfirmed"`
	SignedInAt    time.Time `json:"signedInAt"`
}

// SessionDTO is the client view of an identity state. Dashboard is only set
// once the role is confirmed.
type SessionDTO struct {
	Phase     string        `json:"phase"`
	Version   uint64        `json:"version"`
	Principal *PrincipalDTO `json:"principal"`
	Dashboard string        `json:"dashboard,omitempty"`
}

func ToSessionDTO(state identity.State) *SessionDTO {
	out := &SessionDTO{
		Phase:   state.Phase.String(),
		Version: state.Version,
	}
	if !state.SignedIn() {
		return out
	}

	p := state.Principal
	out.Principal = &PrincipalDTO{
		ID:            p.ID,
		Email:         p.Email,
		DisplayName:   p.DisplayName,
		Method:        p.Method.String(),
		Role:          p.Role.Role().String(),
		RoleConfirmed: p.Role.IsConfirmed(),
		SignedInAt:    p.SignedInAt,
	}
	if role, ok := state.ConfirmedRole(); ok {
		out.Dashboard = access.DashboardFor(role)
	}
	return out
}
