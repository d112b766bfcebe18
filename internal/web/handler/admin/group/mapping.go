// Package group shows how directory groups translate to application groups.
package group

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/groupmap"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
)

// Path is the group mapping route.
const Path = handler.AdminAPIPath + "/groupmap"

// RuleView is one mapping rule.
type RuleView struct {
	RawGroup string   `json:"rawGroup"`
	Groups   []string `json:"groups"`
}

// MappingView is the whole mapping table.
type MappingView struct {
	Rules      []RuleView `json:"rules"`
	Privileged []string   `json:"privileged"`
	Baseline   string     `json:"baseline"`
}

// Service is the group mapping handler.
type Service struct {
	groups *groupmap.Table
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.groups = deps.Auth.Groups()

	app.Get(Path, auth.RequirePermission(auth.PermAdminGroupMappings), s.Get)

	return nil
}

// Get returns the mapping table.
func (s *Service) Get(c fiber.Ctx) error {
	rules := s.groups.Rules()

	out := MappingView{
		Rules:      make([]RuleView, 0, len(rules)),
		Privileged: s.groups.Privileged(),
		Baseline:   s.groups.Baseline(),
	}

	for _, r := range rules {
		out.Rules = append(out.Rules, RuleView{RawGroup: r.RawGroup, Groups: r.Groups})
	}

	return c.JSON(out)
}
