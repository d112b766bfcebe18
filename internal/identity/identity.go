// Package identity holds the identity types shared by the directory,
// the local credential store and the authentication chain.
package identity

import (
	"slices"
	"time"
)

// Role is the application role of an identity.
type Role string

const (
	// RoleAdmin grants access to the administration area.
	RoleAdmin Role = "admin"
	// RoleUser is the default role.
	RoleUser Role = "user"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Provenance tells which provider resolved an identity.
type Provenance string

const (
	// ProvenanceDirectory marks identities resolved by the directory (AD/LDAP).
	ProvenanceDirectory Provenance = "directory"
	// ProvenanceLocal marks identities resolved by the local credential store.
	ProvenanceLocal Provenance = "local"
)

// Identity is the outcome of a successful login. It is never persisted as
// such; it is projected into a local account by the cache sync and into the
// web session.
type Identity struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	Department      string     `json:"department,omitempty"`
	Title           string     `json:"title,omitempty"`
	Groups          []string   `json:"groups"`
	Role            Role       `json:"role"`
	Provenance      Provenance `json:"provenance"`
	LinkPermissions []uint     `json:"linkPermissions,omitempty"`
	LastLogin       time.Time  `json:"lastLogin"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// InGroup reports whether the identity belongs to the application group.
func (i *Identity) InGroup(group string) bool {
	return i != nil && slices.Contains(i.Groups, group)
}

// Clone returns a deep copy so queued or cached copies can't alias slices.
func (i Identity) Clone() Identity {
	i.Groups = slices.Clone(i.Groups)
	i.LinkPermissions = slices.Clone(i.LinkPermissions)

	return i
}
