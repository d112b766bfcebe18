package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/portal"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Config   *config.Config
	Auth     *auth.Service
	Accounts *accounts.Store
	Portal   *portal.Service
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
