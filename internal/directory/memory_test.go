package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Enabled: true,
		Backend: BackendMemory,
		Domain:  "repros.local",
		Server:  "ldap://dc01.repros.local:389",
		BaseDN:  "DC=repros,DC=local",
	}.WithDefaults()
}

func TestFindActiveByEmail(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory(testConfig(), SeedAccounts())

	testCases := []struct {
		name    string
		email   string
		wantID  string
		wantErr error
	}{
		{name: "exact", email: "joao.silva@repros.com.br", wantID: "1001"},
		{name: "case insensitive", email: "Maria.Santos@REPROS.com.br", wantID: "1002"},
		{name: "inactive", email: "carlos.souza@repros.com.br", wantErr: ErrAccountNotFound},
		{name: "unknown", email: "nobody@repros.com.br", wantErr: ErrAccountNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc, err := dir.FindActiveByEmail(ctx, tc.email)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, acc)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantID, acc.ID)
		})
	}
}

func TestFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory(testConfig(), SeedAccounts())

	acc, err := dir.FindActiveByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)
	acc.Groups[0] = "mutated"

	again, err := dir.FindActiveByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)
	assert.Equal(t, "TI", again.Groups[0])
}

func TestValidateCredential(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory(testConfig(), SeedAccounts())

	acc, err := dir.FindActiveByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)

	ok, err := dir.ValidateCredential(ctx, acc, "joao123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.ValidateCredential(ctx, acc, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = dir.ValidateCredential(ctx, nil, "joao123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeriveMarker(t *testing.T) {
	assert.Equal(t, DeriveMarker("Joao.Silva", "x"), DeriveMarker("joao.silva", "x"))
	assert.NotEqual(t, DeriveMarker("joao.silva", "x"), DeriveMarker("joao.silva", "X"))
	assert.Len(t, DeriveMarker("a", "b"), 64)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory(testConfig(), SeedAccounts())

	testCases := []struct {
		search string
		want   []string
	}{
		{search: "", want: []string{"1001", "1002", "1003", "1004", "1005"}},
		{search: "financeiro", want: []string{"1003"}},
		{search: "SANTOS", want: []string{"1002"}},
		{search: "ti", want: []string{"1001", "1005"}},
		{search: "zzz", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.search, func(t *testing.T) {
			accounts, err := dir.List(ctx, tc.search)
			require.NoError(t, err)

			var ids []string
			for _, a := range accounts {
				ids = append(ids, a.ID)
			}

			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestMemoryPing(t *testing.T) {
	ctx := context.Background()

	details, err := NewMemory(testConfig(), SeedAccounts()).Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dc01.repros.local", details["host"])
	assert.Equal(t, "5", details["accounts"])

	cfg := testConfig()
	cfg.Server = "not a uri"

	_, err = NewMemory(cfg, nil).Ping(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpen(t *testing.T) {
	dir, err := Open(testConfig())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, dir)

	cfg := testConfig()
	cfg.Backend = BackendLDAP
	dir, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LDAP{}, dir)

	cfg.Backend = "nis"
	_, err = Open(cfg)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
