package permission

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/frankincense-labs/cx-management/internal/domain/permission"
	vo "github.com/frankincense-labs/cx-management/internal/domain/permission/valueobjects"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

//go:embed policy.yaml
var defaultPolicy []byte

type policyFile struct {
	Roles map[string]map[string][]string `yaml:"roles"`
}

// DefaultPolicies parses the embedded policy file.
func DefaultPolicies() ([]permission.Policy, error) {
	return ParsePolicies(defaultPolicy)
}

// ParsePolicies reads a role → resource → actions YAML document. Unknown
// resources and actions are rejected.
func ParsePolicies(data []byte) ([]permission.Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	roles := make([]string, 0, len(file.Roles))
	for role := range file.Roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var policies []permission.Policy
	for _, role := range roles {
		resources := make([]string, 0, len(file.Roles[role]))
		for resource := range file.Roles[role] {
			resources = append(resources, resource)
		}
		sort.Strings(resources)

		for _, name := range resources {
			resource, err := vo.NewResource(name)
			if err != nil {
				return nil, fmt.Errorf("role %s: %w", role, err)
			}
			for _, a := range file.Roles[role][name] {
				action, err := vo.NewAction(a)
				if err != nil {
					return nil, fmt.Errorf("role %s, resource %s: %w", role, name, err)
				}
				policies = append(policies, permission.Policy{Role: role, Resource: resource, Action: action})
			}
		}
	}
	return policies, nil
}

// SeedDefaults grants every default policy that is missing.
func SeedDefaults(e *Enforcer, log logger.Interface) error {
	policies, err := DefaultPolicies()
	if err != nil {
		return err
	}
	added, err := e.AddPolicies(policies)
	if err != nil {
		return err
	}
	log.Infow("permission policies seeded", "total", len(policies), "added", added)
	return nil
}
