// Package permission authorizes session actions against the role policy.
package permission

import (
	"context"
	"fmt"

	"github.com/frankincense-labs/cx-management/internal/domain/permission"
	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// RoleSource yields the confirmed role of the caller. identity.Store
// implements it through AwaitRole.
type RoleSource interface {
	AwaitRole(ctx context.Context) (uservo.Role, error)
}

type Service struct {
	enforcer permission.PermissionEnforcer
	logger   logger.Interface
}

func NewService(enforcer permission.PermissionEnforcer, log logger.Interface) *Service {
	return &Service{
		enforcer: enforcer,
		logger:   log,
	}
}

// Authorize returns the caller's confirmed role when it may perform action
// on resource, and a forbidden error otherwise. A role that is still
// provisional is confirmed first, so a customer default never grants access.
func (s *Service) Authorize(ctx context.Context, roles RoleSource, resource vo.Resource, action vo.Action) (uservo.Role, error) {
	role, err := roles.AwaitRole(ctx)
	if err != nil {
		return "", err
	}

	allowed, err := s.enforcer.Enforce(role.String(), resource, action)
	if err != nil {
		return "", errors.NewInternalError("permission check failed")
	}
	if !allowed {
		s.logger.Infow("permission denied",
			"role", role,
			"resource", resource,
			"action", action,
		)
		return "", errors.NewForbiddenError(fmt.Sprintf("role %s may not %s %s", role, action, resource))
	}
	return role, nil
}
