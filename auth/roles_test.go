package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-staff/auth"
)

func TestRoleIsValid(t *testing.T) {
	for _, r := range auth.AllRoles {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, auth.Role("owner").IsValid())
	assert.False(t, auth.Role("").IsValid())
}

func TestRoleIsElevated(t *testing.T) {
	assert.False(t, auth.RoleEmployee.IsElevated())
	for _, r := range auth.ElevatedRoles {
		assert.True(t, r.IsElevated(), r)
	}
	assert.False(t, auth.Role("root").IsElevated())
}

func TestAssignabilityMatrix(t *testing.T) {
	expected := map[auth.Role][]auth.Role{
		auth.RoleAdmin1:       auth.AllRoles,
		auth.RoleAdmin2:       {auth.RoleManagerWomen, auth.RoleManagerMen, auth.RoleEmployee},
		auth.RoleManagerWomen: {auth.RoleEmployee},
		auth.RoleManagerMen:   {auth.RoleEmployee},
		auth.RoleEmployee:     {},
	}

	for actor, targets := range expected {
		t.Run(string(actor), func(t *testing.T) {
			assert.Equal(t, targets, actor.AssignableRoles())
			for _, target := range auth.AllRoles {
				assert.Equal(t, contains(targets, target), actor.CanAssign(target), "%s -> %s", actor, target)
			}
		})
	}

	assert.False(t, auth.Role("ghost").CanAssign(auth.RoleEmployee))
}

func contains(roles []auth.Role, r auth.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func TestParseRoles(t *testing.T) {
	set, err := auth.ParseRoles([]string{" Manager_Women", "manager_men"})
	require.NoError(t, err)
	assert.True(t, set.Has(auth.RoleManagerWomen))
	assert.True(t, set.Has(auth.RoleManagerMen))
	assert.False(t, set.Has(auth.RoleAdmin1))
	assert.Equal(t, []auth.Role{auth.RoleManagerWomen, auth.RoleManagerMen}, set.Roles())

	_, err = auth.ParseRoles([]string{"admin1", "superuser"})
	require.Error(t, err)
}

func TestRoleSetUnion(t *testing.T) {
	a := auth.NewRoleSet(auth.RoleAdmin1)
	b := auth.NewRoleSet(auth.RoleManagerMen)
	u := a.Union(b)
	assert.Equal(t, []auth.Role{auth.RoleAdmin1, auth.RoleManagerMen}, u.Roles())
	assert.Len(t, a, 1)
}
