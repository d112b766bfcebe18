package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

// RequireAuthenticated answers 401 when the request carries no identity.
func RequireAuthenticated() fiber.Handler {
	return func(c fiber.Ctx) error {
		if session.Current(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		ident := session.Current(c)
		if ident == nil {
			log.Debug().Str("path", c.Path()).Msg("no identity in request")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		if !HasPermission(ident, permission) {
			log.Warn().Str("email", ident.Email).Str("permission", permission).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}

// AddPermissionsToLocals adds the current user's permissions to fiber.Locals
// for template rendering.
func AddPermissionsToLocals() fiber.Handler {
	return func(c fiber.Ctx) error {
		ident := session.Current(c)
		if ident == nil {
			return c.Next()
		}

		c.Locals("permissions", RolePermissions(ident.Role))
		c.Locals("hasPermission", func(perm string) bool {
			return HasPermission(ident, perm)
		})

		return c.Next()
	}
}
