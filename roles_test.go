package identity_test

import (
	"testing"

	identity "github.com/orderstack/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, identity.RoleUser.IsValid())
	assert.True(t, identity.RoleAdmin.IsValid())
	assert.False(t, identity.Role("SUPERUSER").IsValid())
	assert.False(t, identity.Role("").IsValid())
}

func TestRoleAuthority(t *testing.T) {
	assert.Equal(t, "ROLE_USER", identity.RoleUser.Authority())
	assert.Equal(t, "ROLE_ADMIN", identity.RoleAdmin.Authority())
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, identity.RoleAdmin.IsAtLeast(identity.RoleUser))
	assert.True(t, identity.RoleAdmin.IsAtLeast(identity.RoleAdmin))
	assert.True(t, identity.RoleUser.IsAtLeast(identity.RoleUser))
	assert.False(t, identity.RoleUser.IsAtLeast(identity.RoleAdmin))
	assert.False(t, identity.Role("UNKNOWN").IsAtLeast(identity.RoleUser))
}

func TestParseRole(t *testing.T) {
	role, ok := identity.ParseRole("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, identity.RoleAdmin, role)

	_, ok = identity.ParseRole("nope")
	assert.False(t, ok)
}
