package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/wichananm65/pet-care-backend/internal/user"
	"gopkg.in/yaml.v3"
)

// Rule grants a (role, cargo) pair access to a set of route prefixes. An
// empty Cargo matches any cargo of that role.
type Rule struct {
	Role     user.Role  `yaml:"role"`
	Cargo    user.Cargo `yaml:"cargo,omitempty"`
	Prefixes []string   `yaml:"prefixes"`
}

// Table is the single access table consulted for every request.
type Table struct {
	Public []string `yaml:"public"`
	Rules  []Rule   `yaml:"rules"`
}

func DefaultTable() Table {
	return Table{
		Public: []string{
			"/api/v1/sign-in",
			"/api/v1/sign-up",
			"/api/v1/products",
			"/api/v1/clinics",
			"/api/v1/localities",
		},
		Rules: []Rule{
			{Role: user.RoleCustomer, Prefixes: []string{
				"/api/v1/profile",
				"/api/v1/cart",
				"/api/v1/favorites",
				"/api/v1/address",
				"/api/v1/payment-methods",
				"/api/v1/orders",
				"/api/v1/checkout",
				"/api/v1/appointments",
				"/api/v1/employees",
			}},
			{Role: user.RoleEmployee, Prefixes: []string{"/api/v1/profile", "/api/v1/employees"}},
			{Role: user.RoleEmployee, Cargo: user.CargoVeterinarian, Prefixes: []string{"/api/v1/staff/employees"}},
			{Role: user.RoleEmployee, Cargo: user.CargoCashier, Prefixes: []string{"/api/v1/staff/orders"}},
			{Role: user.RoleAdmin, Prefixes: []string{"/api/v1"}},
		},
	}
}

// LoadFile reads a YAML table. An empty path yields DefaultTable.
func LoadFile(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read policy file: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, fmt.Errorf("parse policy file: %w", err)
	}
	for i, r := range t.Rules {
		if r.Role == "" || len(r.Prefixes) == 0 {
			return Table{}, fmt.Errorf("policy rule %d: role and prefixes are required", i)
		}
	}
	return t, nil
}

func (t Table) IsPublic(path string) bool {
	for _, p := range t.Public {
		if matchPrefix(p, path) {
			return true
		}
	}
	return false
}

// Allowed reports whether the identity may reach path. Unknown roles match
// no rule and are denied.
func (t Table) Allowed(role user.Role, cargo user.Cargo, path string) bool {
	if t.IsPublic(path) {
		return true
	}
	for _, r := range t.Rules {
		if r.Role != role {
			continue
		}
		if r.Cargo != user.CargoNone && r.Cargo != cargo {
			continue
		}
		for _, p := range r.Prefixes {
			if matchPrefix(p, path) {
				return true
			}
		}
	}
	return false
}

// matchPrefix matches on path segment boundaries so "/api/v1/cart" does not
// admit "/api/v1/cartography".
func matchPrefix(prefix, path string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
