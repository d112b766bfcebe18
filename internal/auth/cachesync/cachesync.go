// Package cachesync copies directory identities into the local credential
// store so they stay visible to administrators and to the local path.
package cachesync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

var (
	// ErrSyncFailure wraps every error of the sync routine.
	ErrSyncFailure = errors.New("cache sync failure")
	// ErrNoEmail is returned for identities without email.
	ErrNoEmail = errors.New("identity has no email")

	syncTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "intranet_cache_sync_total",
			Help: "Number of directory identities synced into the local store, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Syncer upserts directory identities into the local credential store.
type Syncer struct {
	store *accounts.Store
	now   func() time.Time
}

// NewSyncer creates a Syncer writing to store.
func NewSyncer(store *accounts.Store) *Syncer {
	return &Syncer{store: store, now: time.Now}
}

// Sync updates the local account with the identity's email or appends a new
// one. The creation time of an existing account is kept. The credential is
// replaced by a random placeholder, so the cached copy can't be used to log
// in locally.
func (s *Syncer) Sync(ctx context.Context, ident identity.Identity) error {
	err := s.sync(ctx, ident)
	if err != nil {
		syncTotal.WithLabelValues("error").Inc()

		return fmt.Errorf("%w: %s: %w", ErrSyncFailure, ident.Email, err)
	}

	syncTotal.WithLabelValues("ok").Inc()

	return nil
}

func (s *Syncer) sync(ctx context.Context, ident identity.Identity) error {
	if ident.Email == "" {
		return ErrNoEmail
	}

	placeholder, err := accounts.HashCredential(uuid.NewString())
	if err != nil {
		return err
	}

	now := s.now()

	return s.store.Update(ctx, func(list []models.LocalAccount) ([]models.LocalAccount, error) {
		i := accounts.Index(list, ident.Email)
		if i < 0 {
			list = append(list, models.LocalAccount{
				ID:        uuid.NewString(),
				Email:     ident.Email,
				CreatedAt: now,
			})
			i = len(list) - 1
		}

		acc := &list[i]
		acc.DisplayName = ident.DisplayName
		acc.Role = ident.Role
		acc.Groups = slices.Clone(ident.Groups)
		acc.Credential = placeholder
		acc.Source = models.AuthSourceDirectory
		acc.SetActive(true)

		if !ident.LastLogin.IsZero() {
			lastLogin := ident.LastLogin
			acc.LastLoginAt = &lastLogin
		}

		return list, nil
	})
}
