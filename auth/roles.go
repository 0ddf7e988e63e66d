package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles an employee record can carry.
type Role string

const (
	RoleAdmin1       Role = "admin1"
	RoleAdmin2       Role = "admin2"
	RoleManagerWomen Role = "manager_women"
	RoleManagerMen   Role = "manager_men"
	RoleEmployee     Role = "employee"
)

// AllRoles lists every role, highest first.
var AllRoles = []Role{RoleAdmin1, RoleAdmin2, RoleManagerWomen, RoleManagerMen, RoleEmployee}

// ElevatedRoles are the roles allowed to see and manage other people's records.
var ElevatedRoles = []Role{RoleAdmin1, RoleAdmin2, RoleManagerWomen, RoleManagerMen}

// assignable says which roles each role may grant when creating or
// updating an employee.
var assignable = map[Role]map[Role]struct{}{
	RoleAdmin1: {
		RoleAdmin1:       {},
		RoleAdmin2:       {},
		RoleManagerWomen: {},
		RoleManagerMen:   {},
		RoleEmployee:     {},
	},
	RoleAdmin2: {
		RoleManagerWomen: {},
		RoleManagerMen:   {},
		RoleEmployee:     {},
	},
	RoleManagerWomen: {
		RoleEmployee: {},
	},
	RoleManagerMen: {
		RoleEmployee: {},
	},
	RoleEmployee: {},
}

// IsValid checks if the role is one of the predefined roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin1, RoleAdmin2, RoleManagerWomen, RoleManagerMen, RoleEmployee:
		return true
	default:
		return false
	}
}

func (r Role) IsElevated() bool {
	return r.IsValid() && r != RoleEmployee
}

func (r Role) String() string {
	return string(r)
}

// CanAssign reports whether actor may grant target to an employee.
func (r Role) CanAssign(target Role) bool {
	allowed, ok := assignable[r]
	if !ok {
		return false
	}
	_, ok = allowed[target]
	return ok
}

// AssignableRoles returns the roles r may grant, in AllRoles order.
func (r Role) AssignableRoles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, target := range AllRoles {
		if r.CanAssign(target) {
			out = append(out, target)
		}
	}
	return out
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// ParseRoles builds a RoleSet from strings, failing on the first unknown role.
func ParseRoles(values []string) (RoleSet, error) {
	s := make(RoleSet, len(values))
	for _, v := range values {
		r, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		s[r] = struct{}{}
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the members in AllRoles order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Union returns a new set with the members of both sets.
func (s RoleSet) Union(other RoleSet) RoleSet {
	out := make(RoleSet, len(s)+len(other))
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}
