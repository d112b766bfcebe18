package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestApply(t *testing.T) {
	base := testConfig()

	got := base.Apply(Patch{
		Enabled: ptr(false),
		Server:  ptr("ldaps://dc02.repros.local:636"),
		Timeout: ptr(30),
	})

	assert.False(t, got.Enabled)
	assert.Equal(t, "ldaps://dc02.repros.local:636", got.Server)
	assert.Equal(t, 30, got.Timeout)
	assert.Equal(t, base.BaseDN, got.BaseDN)
	assert.Equal(t, base.Domain, got.Domain)

	// base is a value and stays untouched
	assert.True(t, base.Enabled)
	assert.Equal(t, "ldap://dc01.repros.local:389", base.Server)

	assert.Equal(t, base, base.Apply(Patch{}))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "ldaps", mutate: func(c *Config) { c.Server = "ldaps://dc01.repros.local:636" }},
		{name: "http scheme", mutate: func(c *Config) { c.Server = "http://dc01" }, wantErr: true},
		{name: "missing server", mutate: func(c *Config) { c.Server = "" }, wantErr: true},
		{name: "missing base dn", mutate: func(c *Config) { c.BaseDN = "" }, wantErr: true},
		{name: "bad backend", mutate: func(c *Config) { c.Backend = "nis" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -1 }, wantErr: true},
		{name: "bad domain", mutate: func(c *Config) { c.Domain = "bad domain!" }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	cfg := testConfig()
	cfg.Server = "https://dc01"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidServer)
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 10, cfg.Timeout)
	assert.Equal(t, defaultUserFilter, cfg.UserFilter)
	assert.Equal(t, "memberOf", cfg.GroupAttr)
	assert.Equal(t, 10*time.Second, cfg.TimeoutDuration())
}

func TestRedacted(t *testing.T) {
	cfg := testConfig()
	assert.Empty(t, cfg.Redacted().AdminPassword)

	cfg.AdminPassword = "s3cret"
	assert.Equal(t, MaskedSecret, cfg.Redacted().AdminPassword)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
}
