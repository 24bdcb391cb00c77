package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSetAllows(t *testing.T) {
	cases := []struct {
		set  RoleSet
		role Role
		want bool
	}{
		{AdminOnly, RoleAdmin, true},
		{AdminOnly, RoleModerator, false},
		{ModeratorOrAdmin, RoleModerator, true},
		{ModeratorOrAdmin, RoleMember, false},
		{MemberOrAbove, RoleMember, true},
		{MemberOrAbove, RoleUser, false},
		{RoleSet{}, RoleAdmin, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.set.Allows(tc.role), "%v allows %q", tc.set, tc.role)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleMember.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superuser").Valid())
	assert.True(t, RoleAdmin.IsElevated())
	assert.False(t, RoleMember.IsElevated())
}
