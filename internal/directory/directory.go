// Package directory reads accounts from the company directory. Two backends
// exist: a static in-memory table of simulated Active Directory accounts and
// an LDAP client for a real server.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendMemory selects the simulated directory.
	BackendMemory = "memory"
	// BackendLDAP selects a real LDAP / Active Directory server.
	BackendLDAP = "ldap"
)

var (
	// ErrAccountNotFound is returned when no active account matches.
	ErrAccountNotFound = errors.New("directory account not found")
	// ErrUnavailable is returned when the directory can not be reached.
	ErrUnavailable = errors.New("directory unavailable")
	// ErrUnknownBackend is returned by Open for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown directory backend")
	// ErrMultipleAccounts is returned when a lookup matches more than one entry.
	ErrMultipleAccounts = errors.New("multiple directory accounts found")
)

// Account is one directory entry.
type Account struct {
	ID          string
	Login       string
	Email       string
	DisplayName string
	Department  string
	Title       string
	// ManagerID refers to another account by ID. It may dangle.
	ManagerID string
	Groups    []string
	Active    bool
	// Marker is the credential marker of the simulated backend. The LDAP
	// backend leaves it empty and validates by binding.
	Marker string
}

// Summary is the admin listing view of an account.
type Summary struct {
	ID          string   `json:"id"`
	Login       string   `json:"login"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Department  string   `json:"department"`
	Title       string   `json:"title"`
	Groups      []string `json:"groups"`
	Active      bool     `json:"active"`
}

// Summarize returns the listing view of a.
func (a *Account) Summarize() Summary {
	return Summary{
		ID:          a.ID,
		Login:       a.Login,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Department:  a.Department,
		Title:       a.Title,
		Groups:      append([]string(nil), a.Groups...),
		Active:      a.Active,
	}
}

// Matches reports whether search is a case-insensitive substring of the
// login, email, display name or department. An empty search matches.
func (a *Account) Matches(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}

	for _, f := range []string{a.Login, a.Email, a.DisplayName, a.Department} {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}

	return false
}

// Directory is implemented by every backend.
type Directory interface {
	// FindActiveByEmail returns the active account with the given email,
	// compared case-insensitively, or ErrAccountNotFound.
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)
	// ValidateCredential reports whether credential is valid for acc.
	// A wrong credential is (false, nil); errors mean the check could not run.
	ValidateCredential(ctx context.Context, acc *Account, credential string) (bool, error)
	// List returns the accounts matching search, inactive ones included.
	List(ctx context.Context, search string) ([]Account, error)
	// Ping checks connectivity and returns details for the admin screen.
	Ping(ctx context.Context) (map[string]string, error)
}

// Open builds the backend selected by cfg.
func Open(cfg Config) (Directory, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(cfg, SeedAccounts()), nil
	case BackendLDAP:
		return NewLDAP(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
