package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// LocalProvider authenticates against the local credential store.
type LocalProvider struct {
	store    *accounts.Store
	baseline string
	now      func() time.Time
}

// NewLocalProvider creates a local provider. baseline is used for accounts
// without groups.
func NewLocalProvider(store *accounts.Store, baseline string) *LocalProvider {
	return &LocalProvider{store: store, baseline: baseline, now: time.Now}
}

// Name implements Provider.
func (p *LocalProvider) Name() identity.Provenance {
	return identity.ProvenanceLocal
}

// TryAuthenticate implements Provider.
func (p *LocalProvider) TryAuthenticate(ctx context.Context, id, credential string) (*identity.Identity, error) {
	acc, err := p.store.FindByEmail(ctx, id)
	if errors.Is(err, accounts.ErrAccountNotFound) {
		return nil, ErrNotAuthorized
	}

	if err != nil {
		return nil, err
	}

	if !acc.IsActive() {
		return nil, ErrNotAuthorized
	}

	if !accounts.ValidateCredential(acc.Credential, credential) {
		return nil, ErrInvalidCredential
	}

	ident := &identity.Identity{
		ID:              acc.ID,
		Email:           acc.Email,
		DisplayName:     acc.DisplayName,
		Groups:          slices.Clone(acc.Groups),
		Role:            acc.Role,
		Provenance:      identity.ProvenanceLocal,
		LinkPermissions: slices.Clone(acc.LinkPermissions),
		LastLogin:       p.now(),
	}

	if len(ident.Groups) == 0 {
		ident.Groups = []string{p.baseline}
	}

	if !ident.Role.Valid() {
		ident.Role = identity.RoleUser
	}

	if ident.DisplayName == "" {
		ident.DisplayName, _, _ = strings.Cut(acc.Email, "@")
	}

	if err = p.store.TouchLogin(ctx, acc.Email, ident.LastLogin); err != nil {
		log.Warn().Err(err).Str("email", acc.Email).Msg("failed to record last login")
	}

	return ident, nil
}
