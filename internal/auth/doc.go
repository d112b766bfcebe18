// Package auth authenticates portal users and guards routes by role.
//
// # Identity Providers
//
// Service tries a fixed, ordered list of providers:
//   - DirectoryProvider looks the email up in the company directory (the
//     simulated AD table or a real LDAP server), validates the credential and
//     maps the raw directory groups to application groups and a role
//   - LocalProvider checks the local credential store (Argon2id markers)
//
// Errors of the directory provider never reach the caller: a disabled,
// unreachable or declining directory falls through to the local store. Only
// the local outcome is returned, as ErrNotAuthorized for an unknown or
// inactive account and ErrInvalidCredential for a wrong credential.
//
// # Cache Sync
//
// Every successful directory login is handed to a cachesync.Queue which
// upserts the identity into the local store on a background worker.
// Failures are logged and published on the queue's error channel.
//
// # Directory Configuration
//
// The directory config is an immutable value behind an atomic pointer.
// SetDirectoryConfig validates a patched copy, saves it in the settings table
// and swaps the pointer; the next login sees the new value.
//
// # Authorization
//
// Roles grant permissions (see RolePermissions). RequirePermission protects
// fiber routes using the identity the web auth middleware put into the
// request locals.
//
// Example usage:
//
//	authService, err := auth.NewService(ctx, auth.Options{
//	    DB:        db,
//	    Store:     accounts.NewStore(db),
//	    Directory: directoryConfig,
//	    Queue:     queue,
//	})
//
//	ident, err := authService.Authenticate(ctx, "joao.silva@repros.com.br", "joao123")
//
//	app.Get("/api/admin/accounts",
//	    auth.RequirePermission(auth.PermAdminAccounts),
//	    handler,
//	)
package auth
