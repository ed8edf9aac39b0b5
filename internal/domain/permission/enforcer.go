// Package permission describes what each role may do with each resource.
package permission

import vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"

// PermissionEnforcer answers role-based permission checks.
type PermissionEnforcer interface {
	Enforce(role string, resource vo.Resource, action vo.Action) (bool, error)
}

// Policy grants role the action on resource.
type Policy struct {
	Role     string
	Resource vo.Resource
	Action   vo.Action
}
