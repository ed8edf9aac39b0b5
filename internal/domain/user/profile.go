// Package user models the principals of the portal: their durable profile
// record and the credential that authenticates them.
package user

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/biztime"
)

const maxDisplayNameLength = 100

// Profile is the durable record keyed by a principal's identifier. It is the
// authoritative source of the principal's role.
type Profile struct {
	id          string
	email       string
	role        vo.Role
	displayName string
	createdAt   time.Time
}

// NewProfile creates a profile. An empty display name falls back to the
// local part of the email address.
func NewProfile(principalID, email string, role vo.Role, displayName string) (*Profile, error) {
	if principalID == "" {
		return nil, fmt.Errorf("principal ID is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = vo.LocalPartOf(email)
	}
	if len(name) > maxDisplayNameLength {
		return nil, fmt.Errorf("display name exceeds maximum length of %d characters", maxDisplayNameLength)
	}

	return &Profile{
		id:          principalID,
		email:       email,
		role:        role,
		displayName: name,
		createdAt:   biztime.NowUTC(),
	}, nil
}

// ReconstructProfile rebuilds a profile from persistence.
func ReconstructProfile(id, email string, role vo.Role, displayName string, createdAt time.Time) (*Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("profile ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if displayName == "" {
		displayName = vo.LocalPartOf(email)
	}
	return &Profile{
		id:          id,
		email:       email,
		role:        role,
		displayName: displayName,
		createdAt:   createdAt,
	}, nil
}

func (p *Profile) ID() string { return p.id }
func (p *Profile) Email() string { return p.email }
func (p *Profile) Role() vo.Role { return p.role }
func (p *Profile) DisplayName() string { return p.displayName }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
