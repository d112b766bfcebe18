package daemon

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/portal"
)

// seed creates the bootstrap administrator and the default links on an
// empty database.
func seed(ctx context.Context, cfg *config.Config, store *accounts.Store, links *portal.Service) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminCredential == "" {
		log.Warn().Msg("no bootstrap administrator configured")
	} else if err := store.Seed(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminName, cfg.Seed.AdminCredential); err != nil {
		return err
	}

	return links.Seed(ctx)
}
