package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}

func TestIdentityHelpers(t *testing.T) {
	var nilIdentity *Identity

	assert.False(t, nilIdentity.IsAdmin())
	assert.False(t, nilIdentity.InGroup("ti"))

	id := &Identity{Role: RoleAdmin, Groups: []string{"ti", "user"}}
	assert.True(t, id.IsAdmin())
	assert.True(t, id.InGroup("ti"))
	assert.False(t, id.InGroup("rh"))
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := Identity{Groups: []string{"ti"}, LinkPermissions: []uint{1}}
	cp := orig.Clone()

	cp.Groups[0] = "rh"
	cp.LinkPermissions[0] = 2

	assert.Equal(t, "ti", orig.Groups[0])
	assert.Equal(t, uint(1), orig.LinkPermissions[0])
}
