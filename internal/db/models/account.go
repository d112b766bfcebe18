package models

import (
	"time"

	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// AuthSource tells who created a local account.
type AuthSource string

const (
	// AuthSourceLocal marks accounts created by an administrator.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceDirectory marks accounts cached from a directory login.
	AuthSourceDirectory AuthSource = "directory"
)

// LocalAccount is an application-native account. The full list of
// accounts is stored as one JSON document in the settings table.
type LocalAccount struct {
	// ID is a uuid assigned on creation.
	ID string `json:"id"`
	// Email is the login identifier; unique case-insensitively.
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	Role        identity.Role `json:"role"`
	// Active is tri-state on purpose: accounts written before the flag
	// existed carry no value and count as active.
	Active *bool    `json:"active,omitempty"`
	Groups []string `json:"groups"`
	// LinkPermissions lists portal link IDs granted on top of the groups.
	LinkPermissions []uint `json:"linkPermissions,omitempty"`
	// Credential is the Argon2id hash of the local credential.
	Credential        string     `json:"credential"`
	Source            AuthSource `json:"source"`
	CreatedAt         time.Time  `json:"createdAt"`
	CredentialResetAt *time.Time `json:"credentialResetAt,omitempty"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
}

// IsActive reports whether the account may log in.
func (a *LocalAccount) IsActive() bool {
	return a.Active == nil || *a.Active
}

// SetActive stores the active flag.
func (a *LocalAccount) SetActive(active bool) {
	a.Active = &active
}
