package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer loads the RBAC model only; policies are loaded from the
// permissions table by the rbac service, not from a CSV adapter.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath)
}
