package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/directory"
	"github.com/Luizsilva-repros/intranet/internal/groupmap"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// Provider resolves an identifier and credential into an identity.
// A provider that does not know the identifier returns ErrNotAuthorized.
type Provider interface {
	Name() identity.Provenance
	TryAuthenticate(ctx context.Context, id, credential string) (*identity.Identity, error)
}

// DirectoryOpener builds a directory client for a configuration.
type DirectoryOpener func(cfg directory.Config) (directory.Directory, error)

// DirectoryProvider authenticates against the directory and maps its groups.
type DirectoryProvider struct {
	config func() directory.Config
	open   DirectoryOpener
	groups *groupmap.Table
	now    func() time.Time
}

// NewDirectoryProvider creates a directory provider. config is called on
// every attempt so configuration changes apply to the next login.
func NewDirectoryProvider(config func() directory.Config, open DirectoryOpener, groups *groupmap.Table) *DirectoryProvider {
	if open == nil {
		open = directory.Open
	}

	if groups == nil {
		groups = groupmap.Default()
	}

	return &DirectoryProvider{config: config, open: open, groups: groups, now: time.Now}
}

// Name implements Provider.
func (p *DirectoryProvider) Name() identity.Provenance {
	return identity.ProvenanceDirectory
}

// TryAuthenticate implements Provider.
func (p *DirectoryProvider) TryAuthenticate(ctx context.Context, id, credential string) (*identity.Identity, error) {
	cfg := p.config()
	if !cfg.Enabled {
		return nil, ErrDirectoryDisabled
	}

	dir, err := p.open(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	acc, err := dir.FindActiveByEmail(ctx, id)
	if errors.Is(err, directory.ErrAccountNotFound) {
		return nil, ErrNotAuthorized
	}

	if err != nil {
		return nil, directoryError(err)
	}

	ok, err := dir.ValidateCredential(ctx, acc, credential)
	if err != nil {
		return nil, directoryError(err)
	}

	if !ok {
		return nil, ErrInvalidCredential
	}

	ident := p.IdentityFor(acc)
	ident.LastLogin = p.now()

	return ident, nil
}

// directoryError classifies a backend error. Unreachable directories and
// timeouts become ErrDirectoryUnavailable; anything else is a lookup failure.
func directoryError(err error) error {
	if directory.IsUnavailable(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	return fmt.Errorf("%w: %w", ErrDirectoryLookup, err)
}

// IdentityFor builds the identity of a directory account without checking
// a credential.
func (p *DirectoryProvider) IdentityFor(acc *directory.Account) *identity.Identity {
	if unmapped := p.groups.UnmappedGroups(acc.Groups); len(unmapped) > 0 {
		log.Debug().Str("email", acc.Email).Strs("groups", unmapped).Msg("directory groups without mapping rule")
	}

	return &identity.Identity{
		ID:          acc.ID,
		Email:       acc.Email,
		DisplayName: acc.DisplayName,
		Department:  acc.Department,
		Title:       acc.Title,
		Groups:      p.groups.MapToApplicationGroups(acc.Groups),
		Role:        p.groups.DeriveRole(acc.Groups),
		Provenance:  identity.ProvenanceDirectory,
	}
}
