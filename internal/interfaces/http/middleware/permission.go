package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/permission"
	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	uservo "github.com/frankincense-labs/cx-management/internal/domain/user/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/constants"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

type PermissionMiddleware struct {
	permissionService *permission.Service
	logger            logger.Interface
}

func NewPermissionMiddleware(permissionService *permission.Service, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		permissionService: permissionService,
		logger:            logger,
	}
}

// RequirePermission admits the request when the caller's confirmed role may
// perform action on resource. It must run after RequireAuth.
func (m *PermissionMiddleware) RequirePermission(resource vo.Resource, action vo.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := StoreFrom(c)
		if !ok {
			utils.ErrorResponseWithError(c, errors.NewNotSignedInError())
			c.Abort()
			return
		}

		role, err := m.permissionService.Authorize(c.Request.Context(), store, resource, action)
		if err != nil {
			if !errors.IsForbiddenError(err) {
				m.logger.Errorw("permission check failed",
					"error", err,
					"user_id", UserID(c),
					"resource", resource,
					"action", action,
				)
			}
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserRole, role)
		c.Next()
	}
}

// UserRole returns the confirmed role set by RequirePermission.
func UserRole(c *gin.Context) uservo.Role {
	v, ok := c.Get(constants.ContextKeyUserRole)
	if !ok {
		return ""
	}
	role, _ := v.(uservo.Role)
	return role
}
