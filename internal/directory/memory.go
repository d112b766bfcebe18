package directory

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Memory is the simulated directory. The account table is fixed at
// construction and never written.
type Memory struct {
	cfg      Config
	accounts []Account
}

// NewMemory creates a simulated directory serving accounts.
func NewMemory(cfg Config, accounts []Account) *Memory {
	return &Memory{cfg: cfg, accounts: accounts}
}

// DeriveMarker returns the credential marker stored for login and credential.
func DeriveMarker(login, credential string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(login) + ":" + credential))

	return hex.EncodeToString(sum[:])
}

// SeedAccounts returns the simulated company directory.
func SeedAccounts() []Account {
	seed := []struct {
		acc        Account
		credential string
	}{
		{
			acc: Account{
				ID: "1001", Login: "joao.silva", Email: "joao.silva@repros.com.br",
				DisplayName: "João Silva", Department: "TI", Title: "Gerente de TI",
				Groups: []string{"TI", "Domain Users", "Administradores TI"}, Active: true,
			},
			credential: "joao123",
		},
		{
			acc: Account{
				ID: "1002", Login: "maria.santos", Email: "maria.santos@repros.com.br",
				DisplayName: "Maria Santos", Department: "RH", Title: "Analista de RH",
				ManagerID: "1006", Groups: []string{"RH", "Domain Users"}, Active: true,
			},
			credential: "maria123",
		},
		{
			acc: Account{
				ID: "1003", Login: "pedro.oliveira", Email: "pedro.oliveira@repros.com.br",
				DisplayName: "Pedro Oliveira", Department: "Financeiro", Title: "Analista Financeiro",
				ManagerID: "1006", Groups: []string{"Financeiro", "Domain Users"}, Active: true,
			},
			credential: "pedro123",
		},
		{
			acc: Account{
				ID: "1004", Login: "ana.costa", Email: "ana.costa@repros.com.br",
				DisplayName: "Ana Costa", Department: "Comercial", Title: "Executiva de Vendas",
				ManagerID: "1006", Groups: []string{"Comercial", "Marketing", "Domain Users"}, Active: true,
			},
			credential: "ana123",
		},
		{
			acc: Account{
				ID: "1005", Login: "carlos.souza", Email: "carlos.souza@repros.com.br",
				DisplayName: "Carlos Souza", Department: "TI", Title: "Suporte",
				ManagerID: "1001", Groups: []string{"TI", "Domain Users"}, Active: false,
			},
			credential: "carlos123",
		},
	}

	out := make([]Account, 0, len(seed))
	for _, s := range seed {
		s.acc.Marker = DeriveMarker(s.acc.Login, s.credential)
		out = append(out, s.acc)
	}

	return out
}

// FindActiveByEmail implements Directory.
func (m *Memory) FindActiveByEmail(_ context.Context, email string) (*Account, error) {
	for i := range m.accounts {
		acc := m.accounts[i]
		if acc.Active && strings.EqualFold(acc.Email, strings.TrimSpace(email)) {
			acc.Groups = append([]string(nil), acc.Groups...)

			return &acc, nil
		}
	}

	return nil, ErrAccountNotFound
}

// ValidateCredential implements Directory.
func (m *Memory) ValidateCredential(_ context.Context, acc *Account, credential string) (bool, error) {
	if acc == nil || acc.Marker == "" {
		return false, nil
	}

	want := []byte(acc.Marker)
	got := []byte(DeriveMarker(acc.Login, credential))

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// List implements Directory.
func (m *Memory) List(_ context.Context, search string) ([]Account, error) {
	var out []Account

	for i := range m.accounts {
		if m.accounts[i].Matches(search) {
			acc := m.accounts[i]
			acc.Groups = append([]string(nil), acc.Groups...)
			out = append(out, acc)
		}
	}

	return out, nil
}

// Ping implements Directory. The simulated directory only checks that the
// configured server is a usable uri.
func (m *Memory) Ping(_ context.Context) (map[string]string, error) {
	u, err := url.Parse(m.cfg.Server)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: invalid server %q", ErrUnavailable, m.cfg.Server)
	}

	return map[string]string{
		"backend":  BackendMemory,
		"server":   m.cfg.Server,
		"host":     u.Hostname(),
		"domain":   m.cfg.Domain,
		"baseDN":   m.cfg.BaseDN,
		"accounts": strconv.Itoa(len(m.accounts)),
	}, nil
}
