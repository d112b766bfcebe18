// Package portal lists the internal system links a user may open.
package portal

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// LinkView is a link as shown to a user.
type LinkView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// CategoryView is a category with the links visible to a user.
type CategoryView struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Icon  string     `json:"icon,omitempty"`
	Links []LinkView `json:"links"`
}

// Service reads categories and links.
type Service struct {
	db *gorm.DB
}

// New creates a portal service.
func New(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Service{db: db}, nil
}

// CanSee reports whether ident may see link. Admins see every link.
// Otherwise a link is visible when it is not admin-only and either has no
// group restriction, shares a group with ident or is granted by ID.
func CanSee(link *models.Link, ident *identity.Identity) bool {
	if ident == nil || !link.Active {
		return false
	}

	if ident.IsAdmin() {
		return true
	}

	if link.AdminOnly {
		return false
	}

	if len(link.AllowedGroups) == 0 || slices.Contains(ident.LinkPermissions, link.ID) {
		return true
	}

	return slices.ContainsFunc(link.AllowedGroups, ident.InGroup)
}

// VisibleLinks returns the categories holding at least one link ident may
// see, both ordered by sort order and name.
func (s *Service) VisibleLinks(ctx context.Context, ident *identity.Identity) ([]CategoryView, error) {
	var categories []models.Category

	err := s.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, title")
		}).
		Order("sort_order, name").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	out := make([]CategoryView, 0, len(categories))

	for _, cat := range categories {
		view := CategoryView{ID: cat.ID, Name: cat.Name, Icon: cat.Icon}

		for i := range cat.Links {
			if CanSee(&cat.Links[i], ident) {
				view.Links = append(view.Links, LinkView{
					ID:          cat.Links[i].ID,
					Title:       cat.Links[i].Title,
					URL:         cat.Links[i].URL,
					Description: cat.Links[i].Description,
				})
			}
		}

		if len(view.Links) > 0 {
			out = append(out, view)
		}
	}

	return out, nil
}

// Seed creates the default categories and links when none exist.
func (s *Service) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	categories := DefaultCategories()

	if err := s.db.WithContext(ctx).Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed links: %w", err)
	}

	log.Info().Int("categories", len(categories)).Msg("seeded portal links")

	return nil
}

// DefaultCategories returns the links of a fresh installation.
func DefaultCategories() []models.Category {
	link := func(order int, title, url, desc string, groups ...string) models.Link {
		return models.Link{
			Title: title, URL: url, Description: desc,
			AllowedGroups: groups, Active: true, SortOrder: order,
		}
	}

	return []models.Category{
		{
			Name: "Sistemas", Icon: "grid", SortOrder: 1,
			Links: []models.Link{
				link(1, "ERP", "https://erp.repros.com.br", "Gestão empresarial"),
				link(2, "Webmail", "https://mail.repros.com.br", "Correio corporativo"),
				link(3, "Chamados TI", "https://helpdesk.repros.com.br", "Abertura de chamados"),
			},
		},
		{
			Name: "Recursos Humanos", Icon: "people", SortOrder: 2,
			Links: []models.Link{
				link(1, "Portal do Colaborador", "https://rh.repros.com.br", "Holerites e férias"),
				link(2, "Folha de Pagamento", "https://folha.repros.com.br", "Processamento da folha", "rh"),
			},
		},
		{
			Name: "Financeiro", Icon: "cash", SortOrder: 3,
			Links: []models.Link{
				link(1, "Contas a Pagar", "https://financeiro.repros.com.br", "Lançamentos", "financeiro", "diretoria"),
				link(2, "CRM", "https://crm.repros.com.br", "Relacionamento com clientes", "comercial", "marketing"),
			},
		},
		{
			Name: "Infraestrutura", Icon: "server", SortOrder: 4,
			Links: []models.Link{
				link(1, "Monitoramento", "https://zabbix.repros.com.br", "Servidores e rede", "ti"),
				{
					Title: "Console AD", URL: "https://dc01.repros.local", Description: "Administração do domínio",
					AdminOnly: true, Active: true, SortOrder: 2,
				},
			},
		},
	}
}
