// Package portal serves the link directory page and the user's JSON API.
package portal

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/portal"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/navigation"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

const (
	// Path is the portal page.
	Path = handler.RootPath

	// Template is the portal page template.
	Template = "portal"

	// MePath returns the session identity.
	MePath = handler.APIPath + "/me"

	// LinksPath returns the visible links.
	LinksPath = handler.APIPath + "/links"
)

// Menu is the top menu of the portal page.
//
//nolint:gochecknoglobals
var Menu = []navigation.MenuItem{
	{Title: "Links", URL: Path, Section: "portal"},
	{Title: "Contas locais", URL: handler.AdminAPIPath + "/accounts", Section: "admin", Permission: auth.PermAdminAccounts},
	{Title: "Diretório", URL: handler.AdminAPIPath + "/directory/config", Section: "admin", Permission: auth.PermAdminDirectory},
	{Title: "Mapeamento de grupos", URL: handler.AdminAPIPath + "/groupmap", Section: "admin", Permission: auth.PermAdminGroupMappings},
}

// Service is the portal handler service.
type Service struct {
	cfg    *config.Config
	portal *portal.Service
}

// Handler is the portal handler.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Portal == nil {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Config
	s.portal = deps.Portal

	app.Get(Path, auth.RequirePermission(auth.PermPortalView), s.Page)
	app.Get(MePath, auth.RequireAuthenticated(), s.Me)
	app.Get(LinksPath, auth.RequirePermission(auth.PermPortalView), s.Links)

	return nil
}

// Page renders the link directory.
func (s *Service) Page(c fiber.Ctx) error {
	ident := session.Current(c)

	nav := navigation.NewContext(s.cfg.Title, "portal", "links").
		AddBreadcrumb("Início", Path, true).
		WithMenu(Menu, func(perm string) bool { return auth.HasPermission(ident, perm) })

	categories, err := s.portal.VisibleLinks(c.Context(), ident)
	if err != nil {
		log.Error().Err(err).Str("email", ident.Email).Msg("failed to load links")

		return c.Status(fiber.StatusInternalServerError).Render(Template, fiber.Map{
			"Navigation": nav,
			"Identity":   ident,
			"Error":      "Failed to load links",
		}, handler.BaseLayout)
	}

	return c.Render(Template, fiber.Map{
		"Navigation": nav,
		"Identity":   ident,
		"Categories": categories,
	}, handler.BaseLayout)
}

// Me returns the identity of the session.
func (s *Service) Me(c fiber.Ctx) error {
	return c.JSON(session.Current(c))
}

// Links returns the categories and links visible to the session identity.
func (s *Service) Links(c fiber.Ctx) error {
	ident := session.Current(c)

	categories, err := s.portal.VisibleLinks(c.Context(), ident)
	if err != nil {
		log.Error().Err(err).Str("email", ident.Email).Msg("failed to load links")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: "failed to load links"})
	}

	return c.JSON(categories)
}
