package login

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/identity"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// Template is the login page template.
	Template = "login"

	// HomePath is where a successful form login lands.
	HomePath = "/"
)

// Service is the login handler service.
type Service struct {
	cfg       *config.Config
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

type loginRequest struct {
	Email      string `json:"email" form:"email" validate:"required,max=254"`
	Credential string `json:"credential" form:"credential" validate:"required,max=256"`
}

// Response is the JSON answer of a successful login.
type Response struct {
	Success    bool                `json:"success"`
	Provenance identity.Provenance `json:"provenance"`
	Identity   *identity.Identity  `json:"identity"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Config == nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Config
	s.auth = deps.Auth
	s.validator = validator.New()

	// register routes
	app.Get(Path, s.Get)
	app.Post(Path, s.Post)

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c fiber.Ctx) error {
	return c.Render(Template, s.viewData(""))
}

// Post handles the login form or JSON submission.
func (s *Service) Post(c fiber.Ctx) error {
	req := new(loginRequest)

	if err := c.Bind().Body(req); err != nil {
		return s.fail(c, fiber.StatusBadRequest, ErrInvalidFormData)
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Struct(req); err != nil {
		return s.fail(c, fiber.StatusBadRequest, ErrInvalidFormData)
	}

	ident, err := s.auth.Authenticate(c.Context(), req.Email, req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthorized) || errors.Is(err, auth.ErrInvalidCredential) {
			return s.fail(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
		}

		log.Error().Err(err).Str("email", req.Email).Msg("login failed unexpectedly")

		return s.fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	userSession := &session.Data{Identity: *ident}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.fail(c, fiber.StatusInternalServerError, ErrInternalServerError)
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     handler.RootPath,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if wantsJSON(c) {
		return c.JSON(Response{Success: true, Provenance: ident.Provenance, Identity: ident})
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To(HomePath)
}

func (s *Service) viewData(errMsg string) fiber.Map {
	m := fiber.Map{
		"Title":            s.cfg.Title,
		"DirectoryEnabled": s.auth.DirectoryConfig().Enabled,
		"DirectoryDomain":  s.auth.DirectoryConfig().Domain,
	}

	if errMsg != "" {
		m["error"] = errMsg
	}

	return m
}

// fail answers with one generic message; JSON clients get status and body,
// browsers get the login page again.
func (s *Service) fail(c fiber.Ctx, status int, err error) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(handler.ErrorResponse{Error: err.Error()})
	}

	return c.Status(status).Render(Template, s.viewData(err.Error()))
}

func wantsJSON(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) ||
		strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
