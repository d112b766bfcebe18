// Package directory provides the admin API of the directory integration.
package directory

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/auth"
	dir "github.com/Luizsilva-repros/intranet/internal/directory"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

const (
	// Path is the base path of the directory admin API.
	Path = handler.AdminAPIPath + "/directory"

	// ConfigPath reads and updates the directory config.
	ConfigPath = Path + "/config"

	// TestPath runs a connectivity test.
	TestPath = Path + "/test"

	// AccountsPath lists directory accounts.
	AccountsPath = Path + "/accounts"

	// ResyncPath copies every directory account into the local store.
	ResyncPath = Path + "/resync"
)

// Service is the directory admin handler.
type Service struct {
	auth *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.auth = deps.Auth

	guard := auth.RequirePermission(auth.PermAdminDirectory)

	app.Get(ConfigPath, guard, s.GetConfig)
	app.Put(ConfigPath, guard, s.UpdateConfig)
	app.Post(TestPath, guard, s.Test)
	app.Get(AccountsPath, guard, s.Accounts)
	app.Post(ResyncPath, guard, s.Resync)

	return nil
}

// GetConfig returns the current config with the bind password masked.
func (s *Service) GetConfig(c fiber.Ctx) error {
	return c.JSON(s.auth.DirectoryConfig().Redacted())
}

// UpdateConfig applies a partial update.
func (s *Service) UpdateConfig(c fiber.Ctx) error {
	patch := new(dir.Patch)

	if err := c.Bind().JSON(patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	cfg, err := s.auth.SetDirectoryConfig(c.Context(), *patch)
	if err != nil {
		if errors.Is(err, dir.ErrInvalidServer) || errors.Is(err, dir.ErrInvalidConfig) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}

		log.Error().Err(err).Msg("failed to update directory config")

		return fail(c, fiber.StatusInternalServerError, "failed to save directory config")
	}

	log.Info().Str("by", actor(c)).Msg("directory config changed")

	return c.JSON(cfg.Redacted())
}

// Test checks that the configured directory answers.
func (s *Service) Test(c fiber.Ctx) error {
	return c.JSON(s.auth.TestDirectoryConnectivity(c.Context()))
}

// Accounts lists the directory accounts matching the search query.
func (s *Service) Accounts(c fiber.Ctx) error {
	list, err := s.auth.ListDirectoryAccounts(c.Context(), c.Query("search"))
	if err != nil {
		log.Warn().Err(err).Msg("failed to list directory accounts")

		return fail(c, fiber.StatusBadGateway, err.Error())
	}

	return c.JSON(list)
}

// Resync copies every active directory account into the local store.
func (s *Service) Resync(c fiber.Ctx) error {
	res, err := s.auth.ResyncAllDirectoryAccounts(c.Context())
	if err != nil {
		if errors.Is(err, auth.ErrDirectoryDisabled) {
			return fail(c, fiber.StatusConflict, err.Error())
		}

		return fail(c, fiber.StatusBadGateway, err.Error())
	}

	log.Info().Str("by", actor(c)).Int("synced", res.Synced).Int("errors", res.Errors).Msg("directory resync requested")

	return c.JSON(res)
}

func actor(c fiber.Ctx) string {
	if ident := session.Current(c); ident != nil {
		return ident.Email
	}

	return ""
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(handler.ErrorResponse{Error: msg})
}
