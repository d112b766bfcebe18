// Package groupmap translates raw directory group names into application
// groups and roles.
package groupmap

import (
	"maps"
	"slices"
	"strings"

	"github.com/Luizsilva-repros/intranet/internal/identity"
)

// BaselineGroup is assigned when nothing else maps.
const BaselineGroup = "user"

// Rule maps one raw directory group to application groups.
type Rule struct {
	RawGroup string
	Groups   []string
}

// Table is an immutable mapping table. Lookups ignore case.
type Table struct {
	// rules and privileged are keyed by the normalized raw group; the
	// values keep the configured spelling for listings.
	rules      map[string]Rule
	privileged map[string]string
	baseline   string
}

// New builds a table from rules and the raw groups that grant the admin role.
func New(rules []Rule, privileged []string, baseline string) *Table {
	t := &Table{
		rules:      make(map[string]Rule, len(rules)),
		privileged: make(map[string]string, len(privileged)),
		baseline:   baseline,
	}

	for _, r := range rules {
		key := normalize(r.RawGroup)

		rule, ok := t.rules[key]
		if !ok {
			rule.RawGroup = strings.TrimSpace(r.RawGroup)
		}

		rule.Groups = append(rule.Groups, r.Groups...)
		t.rules[key] = rule
	}

	for _, p := range privileged {
		if key := normalize(p); t.privileged[key] == "" {
			t.privileged[key] = strings.TrimSpace(p)
		}
	}

	return t
}

// DefaultRules is the mapping used by the company directory.
func DefaultRules() []Rule {
	return []Rule{
		{RawGroup: "TI", Groups: []string{"ti"}},
		{RawGroup: "Domain Users", Groups: []string{"user"}},
		{RawGroup: "Administradores TI", Groups: []string{"admin", "ti"}},
		{RawGroup: "Domain Admins", Groups: []string{"admin"}},
		{RawGroup: "RH", Groups: []string{"rh"}},
		{RawGroup: "Financeiro", Groups: []string{"financeiro"}},
		{RawGroup: "Comercial", Groups: []string{"comercial"}},
		{RawGroup: "Diretoria", Groups: []string{"diretoria"}},
		{RawGroup: "Marketing", Groups: []string{"marketing"}},
	}
}

// DefaultPrivileged lists the raw groups whose members become admins.
func DefaultPrivileged() []string {
	return []string{"Administradores TI", "Domain Admins"}
}

// Default returns the table built from DefaultRules and DefaultPrivileged.
func Default() *Table {
	return New(DefaultRules(), DefaultPrivileged(), BaselineGroup)
}

// MapToApplicationGroups returns the sorted union of the groups mapped from
// raw. Unknown raw groups are ignored. The result is never empty.
func (t *Table) MapToApplicationGroups(raw []string) []string {
	var out []string

	for _, g := range raw {
		out = append(out, t.rules[normalize(g)].Groups...)
	}

	if len(out) == 0 {
		return []string{t.baseline}
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// DeriveRole returns admin when raw contains a privileged group.
func (t *Table) DeriveRole(raw []string) identity.Role {
	for _, g := range raw {
		if _, ok := t.privileged[normalize(g)]; ok {
			return identity.RoleAdmin
		}
	}

	return identity.RoleUser
}

// UnmappedGroups returns the raw groups the table has no rule for.
func (t *Table) UnmappedGroups(raw []string) []string {
	var out []string

	for _, g := range raw {
		if _, ok := t.rules[normalize(g)]; !ok {
			out = append(out, g)
		}
	}

	return out
}

// Baseline returns the group injected when nothing maps.
func (t *Table) Baseline() string {
	return t.baseline
}

func normalize(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}

// Rules returns the mapping rules with their configured spelling, ordered
// by normalized raw group name.
func (t *Table) Rules() []Rule {
	keys := slices.Sorted(maps.Keys(t.rules))

	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		r := t.rules[k]
		out = append(out, Rule{RawGroup: r.RawGroup, Groups: slices.Clone(r.Groups)})
	}

	return out
}

// Privileged returns the raw groups granting the admin role with their
// configured spelling, ordered by normalized name.
func (t *Table) Privileged() []string {
	keys := slices.Sorted(maps.Keys(t.privileged))

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.privileged[k])
	}

	return out
}
