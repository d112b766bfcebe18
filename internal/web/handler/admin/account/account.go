// Package account provides the admin API for local accounts.
package account

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

// Path is the base path for account management.
const Path = handler.AdminAPIPath + "/accounts"

// ErrSelfDeactivation is returned when an admin disables their own account.
var ErrSelfDeactivation = errors.New("you cannot deactivate your own account")

// View is an account as returned by the API. It never carries the credential.
type View struct {
	ID                string            `json:"id"`
	Email             string            `json:"email"`
	DisplayName       string            `json:"displayName"`
	Role              identity.Role     `json:"role"`
	Active            bool              `json:"active"`
	Groups            []string          `json:"groups"`
	LinkPermissions   []uint            `json:"linkPermissions,omitempty"`
	Source            models.AuthSource `json:"source"`
	CreatedAt         time.Time         `json:"createdAt"`
	CredentialResetAt *time.Time        `json:"credentialResetAt,omitempty"`
	LastLoginAt       *time.Time        `json:"lastLoginAt,omitempty"`
}

// NewView converts a stored account.
func NewView(acc *models.LocalAccount) View {
	return View{
		ID:                acc.ID,
		Email:             acc.Email,
		DisplayName:       acc.DisplayName,
		Role:              acc.Role,
		Active:            acc.IsActive(),
		Groups:            acc.Groups,
		LinkPermissions:   acc.LinkPermissions,
		Source:            acc.Source,
		CreatedAt:         acc.CreatedAt,
		CredentialResetAt: acc.CredentialResetAt,
		LastLoginAt:       acc.LastLoginAt,
	}
}

type activeRequest struct {
	Active *bool `json:"active" form:"active" validate:"required"`
}

type resetRequest struct {
	Credential string `json:"credential" form:"credential" validate:"required,min=4,max=256"`
}

type groupsRequest struct {
	Role            identity.Role `json:"role" validate:"required,oneof=admin user"`
	Groups          []string      `json:"groups" validate:"dive,required"`
	LinkPermissions []uint        `json:"linkPermissions"`
}

// Service provides the account operations.
type Service struct {
	store     *accounts.Store
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Accounts == nil {
		return handler.ErrNilDeps
	}

	s.store = deps.Accounts
	s.validator = validator.New()

	guard := auth.RequirePermission(auth.PermAdminAccounts)

	app.Get(Path, guard, s.List)
	app.Post(Path, guard, s.Create)
	app.Get(Path+"/:email", guard, s.Get)
	app.Post(Path+"/:email/active", guard, s.SetActive)
	app.Post(Path+"/:email/reset", guard, s.ResetCredential)
	app.Post(Path+"/:email/groups", guard, s.SetGroups)

	return nil
}

// List returns every local account sorted by email.
func (s *Service) List(c fiber.Ctx) error {
	list, err := s.store.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list accounts")

		return fail(c, fiber.StatusInternalServerError, "failed to load accounts")
	}

	out := make([]View, 0, len(list))
	for i := range list {
		out = append(out, NewView(&list[i]))
	}

	return c.JSON(out)
}

// Get returns one account.
func (s *Service) Get(c fiber.Ctx) error {
	acc, err := s.store.FindByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(NewView(acc))
}

// Create adds a local account.
func (s *Service) Create(c fiber.Ctx) error {
	in := new(accounts.NewAccount)

	if err := c.Bind().Body(in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	acc, err := s.store.Create(c.Context(), *in)
	if err != nil {
		return storeError(c, err)
	}

	log.Info().Str("email", acc.Email).Str("by", actor(c)).Msg("local account created")

	return c.Status(fiber.StatusCreated).JSON(NewView(acc))
}

// SetActive enables or disables an account.
func (s *Service) SetActive(c fiber.Ctx) error {
	in := new(activeRequest)

	if err := c.Bind().Body(in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	email := c.Params("email")
	if !*in.Active && strings.EqualFold(email, actor(c)) {
		return fail(c, fiber.StatusBadRequest, ErrSelfDeactivation.Error())
	}

	if err := s.store.SetActive(c.Context(), email, *in.Active); err != nil {
		return storeError(c, err)
	}

	log.Info().Str("email", email).Bool("active", *in.Active).Str("by", actor(c)).Msg("local account status changed")

	return c.SendStatus(fiber.StatusNoContent)
}

// ResetCredential replaces the credential of an account.
func (s *Service) ResetCredential(c fiber.Ctx) error {
	in := new(resetRequest)

	if err := c.Bind().Body(in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, "credential must have at least 4 characters")
	}

	email := c.Params("email")
	if err := s.store.ResetCredential(c.Context(), email, in.Credential); err != nil {
		return storeError(c, err)
	}

	log.Info().Str("email", email).Str("by", actor(c)).Msg("local credential reset")

	return c.SendStatus(fiber.StatusNoContent)
}

// SetGroups replaces the role, groups and link grants of an account.
func (s *Service) SetGroups(c fiber.Ctx) error {
	in := new(groupsRequest)

	if err := c.Bind().Body(in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(in); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	email := c.Params("email")
	if err := s.store.SetGroups(c.Context(), email, in.Role, in.Groups, in.LinkPermissions); err != nil {
		return storeError(c, err)
	}

	log.Info().Str("email", email).Strs("groups", in.Groups).Str("by", actor(c)).Msg("local account groups changed")

	return c.SendStatus(fiber.StatusNoContent)
}

func actor(c fiber.Ctx) string {
	if ident := session.Current(c); ident != nil {
		return ident.Email
	}

	return ""
}

func storeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, accounts.ErrAccountExists):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrInvalidRole), errors.Is(err, accounts.ErrEmptyEmail):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	log.Error().Err(err).Msg("account store failed")

	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(handler.ErrorResponse{Error: msg})
}
