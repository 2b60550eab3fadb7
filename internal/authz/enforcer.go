// Package authz decides whether a role may perform an action on an object.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer wraps a casbin enforcer loaded with the forum's role policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	return NewEnforcerFromStrings(embeddedModel, embeddedPolicy)
}

// NewEnforcerFromStrings builds an enforcer from model and policy text.
func NewEnforcerFromStrings(modelText, policy string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(e, policy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e}, nil
}

// loadPolicy adds the "p" and "g" lines of a CSV policy.
func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var err error
		switch {
		case parts[0] == "p" && len(parts) == 4:
			_, err = e.AddPolicy(parts[1], parts[2], parts[3])
		case parts[0] == "g" && len(parts) == 3:
			_, err = e.AddGroupingPolicy(parts[1], parts[2])
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
		if err != nil {
			return fmt.Errorf("failed to add policy %q: %w", line, err)
		}
	}
	return nil
}

// Can reports whether role may perform action on object.
func (e *Enforcer) Can(role, object, action string) (bool, error) {
	if role == "" {
		return false, nil
	}
	return e.enforcer.Enforce(role, object, action)
}
