package directory

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultTimeout    = 10
	defaultUserFilter = "(&(objectClass=user)(|(mail={email})(userPrincipalName={email})))"
	defaultGroupAttr  = "memberOf"

	// MaskedSecret replaces secrets in API responses.
	MaskedSecret = "********"
)

var (
	// ErrInvalidServer is returned when the server is not an ldap:// or ldaps:// uri.
	ErrInvalidServer = errors.New("directory server must be an ldap:// or ldaps:// uri")
	// ErrInvalidConfig is returned when a field fails validation.
	ErrInvalidConfig = errors.New("invalid directory config")
)

var validate = validator.New()

// Config is the directory integration configuration. Values are immutable
// once published; changes produce a new value through Apply.
type Config struct {
	Enabled       bool   `json:"enabled"`
	Backend       string `json:"backend" validate:"omitempty,oneof=memory ldap"`
	Domain        string `json:"domain" validate:"omitempty,hostname_rfc1123"`
	Server        string `json:"server" validate:"required,uri"`
	BaseDN        string `json:"baseDN" validate:"required"`
	AdminUser     string `json:"adminUser,omitempty"`
	AdminPassword string `json:"adminPassword,omitempty"`
	UserFilter    string `json:"userFilter,omitempty"`
	GroupAttr     string `json:"groupAttr,omitempty"`
	// Timeout in seconds for dial and requests.
	Timeout    int  `json:"timeout" validate:"gte=0,lte=300"`
	SkipVerify bool `json:"skipVerify"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Enabled       *bool   `json:"enabled,omitempty"`
	Backend       *string `json:"backend,omitempty"`
	Domain        *string `json:"domain,omitempty"`
	Server        *string `json:"server,omitempty"`
	BaseDN        *string `json:"baseDN,omitempty"`
	AdminUser     *string `json:"adminUser,omitempty"`
	AdminPassword *string `json:"adminPassword,omitempty"`
	UserFilter    *string `json:"userFilter,omitempty"`
	GroupAttr     *string `json:"groupAttr,omitempty"`
	Timeout       *int    `json:"timeout,omitempty"`
	SkipVerify    *bool   `json:"skipVerify,omitempty"`
}

// Apply returns a copy of c with the patch applied.
func (c Config) Apply(p Patch) Config {
	set(&c.Enabled, p.Enabled)
	set(&c.Backend, p.Backend)
	set(&c.Domain, p.Domain)
	set(&c.Server, p.Server)
	set(&c.BaseDN, p.BaseDN)
	set(&c.AdminUser, p.AdminUser)
	set(&c.AdminPassword, p.AdminPassword)
	set(&c.UserFilter, p.UserFilter)
	set(&c.GroupAttr, p.GroupAttr)
	set(&c.Timeout, p.Timeout)
	set(&c.SkipVerify, p.SkipVerify)

	return c
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// WithDefaults fills the optional fields left empty.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	if c.UserFilter == "" {
		c.UserFilter = defaultUserFilter
	}

	if c.GroupAttr == "" {
		c.GroupAttr = defaultGroupAttr
	}

	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	u, err := url.Parse(c.Server)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidServer, err)
	}

	if u.Scheme != "ldap" && u.Scheme != "ldaps" {
		return ErrInvalidServer
	}

	return nil
}

// Redacted returns a copy with the bind password masked.
func (c Config) Redacted() Config {
	if c.AdminPassword != "" {
		c.AdminPassword = MaskedSecret
	}

	return c
}

// TimeoutDuration returns the timeout as a duration.
func (c Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout * time.Second
	}

	return time.Duration(c.Timeout) * time.Second
}
