package auth

import (
	"slices"

	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// Permission constants guard the routes of the portal.
const (
	// PermPortalView allows browsing the link directory.
	PermPortalView = "portal.view"

	// PermAdminDirectory allows changing, testing and resyncing the directory integration.
	PermAdminDirectory = "admin.directory"
	// PermAdminAccounts allows managing local accounts.
	PermAdminAccounts = "admin.accounts"
	// PermAdminGroupMappings allows viewing the directory group mapping rules.
	PermAdminGroupMappings = "admin.group.mappings"
)

//nolint:gochecknoglobals
var rolePermissions = map[identity.Role][]string{
	identity.RoleAdmin: {PermPortalView, PermAdminDirectory, PermAdminAccounts, PermAdminGroupMappings},
	identity.RoleUser:  {PermPortalView},
}

// RolePermissions returns the permissions granted to role.
func RolePermissions(role identity.Role) []string {
	return slices.Clone(rolePermissions[role])
}

// HasPermission reports whether ident's role grants permission.
func HasPermission(ident *identity.Identity, permission string) bool {
	if ident == nil {
		return false
	}

	return slices.Contains(rolePermissions[ident.Role], permission)
}
