// Package accounts is the local credential store. Accounts are kept as a
// single JSON document in the settings table and always read and written
// as a whole.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Luizsilva-repros/intranet/internal/db/controller/setting"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// SettingName is the settings key holding the account list.
const SettingName = "local_accounts"

var (
	// ErrAccountNotFound is returned when no account has the given email.
	ErrAccountNotFound = errors.New("local account not found")
	// ErrAccountExists is returned when creating an account whose email is taken.
	ErrAccountExists = errors.New("local account already exists")
	// ErrInvalidRole is returned for a role other than admin or user.
	ErrInvalidRole = errors.New("invalid role")
	// ErrEmptyEmail is returned when an account has no email.
	ErrEmptyEmail = errors.New("email can not be empty")
)

// Store reads and writes the account list. The mutex serializes
// read-modify-write cycles inside the process; across processes the last
// writer wins.
type Store struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a store on top of the settings table.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// HashCredential returns the Argon2id marker for credential.
func HashCredential(credential string) (string, error) {
	hash, err := argon2id.CreateHash(credential, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}

	return hash, nil
}

// ValidateCredential reports whether credential matches marker. A malformed
// marker never matches.
func ValidateCredential(marker, credential string) bool {
	match, err := argon2id.ComparePasswordAndHash(credential, marker)
	if err != nil {
		log.Error().Err(err).Msg("failed to verify credential")

		return false
	}

	return match
}

// ReadAll returns every account. A missing document is an empty store.
func (s *Store) ReadAll(ctx context.Context) ([]models.LocalAccount, error) {
	var list []models.LocalAccount

	err := setting.LoadJSON(ctx, s.db, SettingName, &list)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read local accounts: %w", err)
	}

	return list, nil
}

// WriteAll replaces the whole account list.
func (s *Store) WriteAll(ctx context.Context, list []models.LocalAccount) error {
	if list == nil {
		list = []models.LocalAccount{}
	}

	if err := setting.SaveJSON(ctx, s.db, SettingName, list); err != nil {
		return fmt.Errorf("failed to write local accounts: %w", err)
	}

	return nil
}

// Update runs fn on the account list and writes the result back, holding
// the store lock for the whole cycle.
func (s *Store) Update(ctx context.Context, fn func(list []models.LocalAccount) ([]models.LocalAccount, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}

	if list, err = fn(list); err != nil {
		return err
	}

	return s.WriteAll(ctx, list)
}

// Index returns the position of the account with email, compared
// case-insensitively, or -1.
func Index(list []models.LocalAccount, email string) int {
	email = strings.TrimSpace(email)

	return slices.IndexFunc(list, func(a models.LocalAccount) bool {
		return strings.EqualFold(a.Email, email)
	})
}

// List returns all accounts ordered by email.
func (s *Store) List(ctx context.Context) ([]models.LocalAccount, error) {
	list, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(list, func(a, b models.LocalAccount) int {
		return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
	})

	return list, nil
}

// FindByEmail returns the account with email, active or not.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.LocalAccount, error) {
	list, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	i := Index(list, email)
	if i < 0 {
		return nil, ErrAccountNotFound
	}

	return &list[i], nil
}

// NewAccount describes an account created by an administrator.
type NewAccount struct {
	Email       string        `json:"email" validate:"required,email"`
	DisplayName string        `json:"displayName" validate:"required,max=100"`
	Role        identity.Role `json:"role" validate:"required,oneof=admin user"`
	Groups      []string      `json:"groups" validate:"dive,required"`
	Credential  string        `json:"credential" validate:"required,min=4"`
}

// Create adds a local account.
func (s *Store) Create(ctx context.Context, in NewAccount) (*models.LocalAccount, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrEmptyEmail
	}

	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}

	marker, err := HashCredential(in.Credential)
	if err != nil {
		return nil, err
	}

	acc := models.LocalAccount{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		Groups:      slices.Clone(in.Groups),
		Credential:  marker,
		Source:      models.AuthSourceLocal,
		CreatedAt:   s.now(),
	}
	acc.SetActive(true)

	err = s.Update(ctx, func(list []models.LocalAccount) ([]models.LocalAccount, error) {
		if Index(list, email) >= 0 {
			return nil, ErrAccountExists
		}

		return append(list, acc), nil
	})
	if err != nil {
		return nil, err
	}

	return &acc, nil
}

// modify applies fn to the account with email.
func (s *Store) modify(ctx context.Context, email string, fn func(acc *models.LocalAccount)) error {
	return s.Update(ctx, func(list []models.LocalAccount) ([]models.LocalAccount, error) {
		i := Index(list, email)
		if i < 0 {
			return nil, ErrAccountNotFound
		}

		fn(&list[i])

		return list, nil
	})
}

// SetActive enables or disables an account.
func (s *Store) SetActive(ctx context.Context, email string, active bool) error {
	return s.modify(ctx, email, func(acc *models.LocalAccount) {
		acc.SetActive(active)
	})
}

// ResetCredential stores a new credential and records the reset time.
func (s *Store) ResetCredential(ctx context.Context, email, credential string) error {
	marker, err := HashCredential(credential)
	if err != nil {
		return err
	}

	return s.modify(ctx, email, func(acc *models.LocalAccount) {
		now := s.now()
		acc.Credential = marker
		acc.CredentialResetAt = &now
	})
}

// SetGroups replaces the groups, link permissions and role of an account.
func (s *Store) SetGroups(ctx context.Context, email string, role identity.Role, groups []string, links []uint) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return s.modify(ctx, email, func(acc *models.LocalAccount) {
		acc.Role = role
		acc.Groups = slices.Clone(groups)
		acc.LinkPermissions = slices.Clone(links)
	})
}

// TouchLogin records a successful login.
func (s *Store) TouchLogin(ctx context.Context, email string, at time.Time) error {
	return s.modify(ctx, email, func(acc *models.LocalAccount) {
		acc.LastLoginAt = &at
	})
}

// Seed creates the bootstrap administrator when the store is empty.
func (s *Store) Seed(ctx context.Context, email, name, credential string) error {
	list, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}

	if len(list) > 0 || email == "" || credential == "" {
		return nil
	}

	_, err = s.Create(ctx, NewAccount{
		Email:       email,
		DisplayName: name,
		Role:        identity.RoleAdmin,
		Groups:      []string{"admin", "ti"},
		Credential:  credential,
	})
	if err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("created bootstrap administrator")

	return nil
}
