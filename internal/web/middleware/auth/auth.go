package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/login"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/logout"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

// PublicPrefixes are served without a session.
//
//nolint:gochecknoglobals
var PublicPrefixes = []string{"/static", "/metrics", "/checkalive"}

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c fiber.Ctx) error {
	path := strings.ToLower(c.Path())

	for _, p := range PublicPrefixes {
		if strings.HasPrefix(path, p) {
			return c.Next()
		}
	}

	// Allow logout page without authentication
	if IsLogoutPage(c) {
		return c.Next()
	}

	isLoginPage := IsLoginPage(c)

	sessData := new(session.Data)
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := sessData.Read(sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
			log.Warn().Err(err).Msg("failed to read session")
		}
	}

	if !sessData.Valid() {
		if isLoginPage {
			return c.Next()
		}

		if IsAPI(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: "unauthorized"})
		}

		return c.Redirect().Status(fiber.StatusSeeOther).To(login.Path)
	}

	if isLoginPage && c.Method() == fiber.MethodGet {
		return c.Redirect().Status(fiber.StatusSeeOther).To(login.HomePath)
	}

	ident := sessData.Identity
	session.SetCurrent(c, &ident)
	c.Locals("CurrentUser", ident)

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Path()), login.Path)
}

// IsLogoutPage checks if the current request is for the logout page.
func IsLogoutPage(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Path()), logout.Path)
}

// IsAPI checks if the current request targets the JSON API.
func IsAPI(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Path()), handler.APIPath+"/")
}
