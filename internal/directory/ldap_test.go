package directory

import (
	"context"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryToAccount(t *testing.T) {
	l := NewLDAP(testConfig())

	entry := ldap.NewEntry("CN=Joao Silva,OU=TI,DC=repros,DC=local", map[string][]string{
		"sAMAccountName":     {"joao.silva"},
		"mail":               {"joao.silva@repros.com.br"},
		"displayName":        {"João Silva"},
		"department":         {"TI"},
		"title":              {"Gerente de TI"},
		"manager":            {"CN=Diretor,OU=Diretoria,DC=repros,DC=local"},
		"userAccountControl": {"512"},
		"memberOf": {
			"CN=TI,OU=Groups,DC=repros,DC=local",
			"CN=Administradores TI,OU=Groups,DC=repros,DC=local",
		},
	})

	acc := l.entryToAccount(entry)

	assert.Equal(t, "CN=Joao Silva,OU=TI,DC=repros,DC=local", acc.ID)
	assert.Equal(t, "joao.silva", acc.Login)
	assert.Equal(t, "joao.silva@repros.com.br", acc.Email)
	assert.Equal(t, "João Silva", acc.DisplayName)
	assert.Equal(t, "CN=Diretor,OU=Diretoria,DC=repros,DC=local", acc.ManagerID)
	assert.Equal(t, []string{"TI", "Administradores TI"}, acc.Groups)
	assert.True(t, acc.Active)
	assert.Empty(t, acc.Marker)
}

func TestEntryToAccountDisabled(t *testing.T) {
	l := NewLDAP(testConfig())

	entry := ldap.NewEntry("CN=Carlos,DC=repros,DC=local", map[string][]string{
		"uid":                {"carlos"},
		"userPrincipalName":  {"carlos@repros.local"},
		"userAccountControl": {"514"},
	})

	acc := l.entryToAccount(entry)

	assert.False(t, acc.Active)
	assert.Equal(t, "carlos", acc.Login)
	assert.Equal(t, "carlos@repros.local", acc.Email)
	assert.Equal(t, "carlos", acc.DisplayName)
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "Domain Users", groupName("CN=Domain Users,CN=Users,DC=repros,DC=local"))
	assert.Equal(t, "RH", groupName("RH"))
	assert.Equal(t, "OU=Groups,DC=x", groupName("OU=Groups,DC=x"))
}

func TestUserFilterEscapes(t *testing.T) {
	l := NewLDAP(testConfig())

	assert.Equal(t,
		`(&(objectClass=user)(|(mail=a\2a@x)(userPrincipalName=a\2a@x)))`,
		l.userFilter("a*@x"),
	)
}

func TestLDAPUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = BackendLDAP
	cfg.Server = "ldap://127.0.0.1:1"
	cfg.Timeout = 1

	l := NewLDAP(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := l.Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsUnavailable(err))

	_, err = l.FindActiveByEmail(ctx, "joao.silva@repros.com.br")
	assert.ErrorIs(t, err, ErrUnavailable)

	ok, err := l.ValidateCredential(ctx, &Account{ID: "CN=x"}, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLDAPCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLDAP(testConfig()).List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
