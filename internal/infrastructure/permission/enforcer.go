package permission

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/frankincense-labs/cx-management/internal/domain/permission"
	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

//go:embed model.conf
var modelText string

var _ permission.PermissionEnforcer = (*Enforcer)(nil)

// Enforcer checks role permissions against policies stored in the
// casbin_rule table.
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Enforce(role string, resource vo.Resource, action vo.Action) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(role, resource.String(), action.String())
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "role", role, "resource", resource, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

// AddPolicies grants the policies that are not granted yet and returns how
// many were added.
func (e *Enforcer) AddPolicies(policies []permission.Policy) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, p := range policies {
		ok, err := e.enforcer.AddPolicy(p.Role, p.Resource.String(), p.Action.String())
		if err != nil {
			e.logger.Errorw("failed to add policy", "error", err, "role", p.Role, "resource", p.Resource, "action", p.Action)
			return added, fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p.Role, p.Resource, p.Action, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (e *Enforcer) RemovePolicy(p permission.Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(p.Role, p.Resource.String(), p.Action.String()); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

// PermissionsForRole lists the resource/action pairs granted to role.
func (e *Enforcer) PermissionsForRole(role string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	permissions, err := e.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role: %w", err)
	}
	return permissions, nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}
