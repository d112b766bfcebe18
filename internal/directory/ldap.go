package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// uacAccountDisable is the ACCOUNTDISABLE flag of userAccountControl.
const uacAccountDisable = 0x2

var searchAttributes = []string{
	"sAMAccountName",
	"uid",
	"mail",
	"userPrincipalName",
	"displayName",
	"cn",
	"department",
	"title",
	"manager",
	"userAccountControl",
}

// LDAP is a directory backed by an LDAP / Active Directory server. Every
// call opens its own connection.
type LDAP struct {
	cfg Config
}

// NewLDAP creates an LDAP directory.
func NewLDAP(cfg Config) *LDAP {
	return &LDAP{cfg: cfg.WithDefaults()}
}

// connect establishes a connection and binds with the admin account if one
// is configured.
func (l *LDAP) connect(ctx context.Context) (*ldap.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := l.timeout(ctx)

	u, err := url.Parse(l.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var tlsConfig *tls.Config
	if u.Scheme == "ldaps" {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: l.cfg.SkipVerify, //nolint:gosec // operator choice for lab directories
			ServerName:         u.Hostname(),
		}
	}

	conn, err := ldap.DialURL(l.cfg.Server,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		ldap.DialWithTLSConfig(tlsConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to LDAP server: %w", ErrUnavailable, err)
	}

	conn.SetTimeout(timeout)

	if l.cfg.AdminUser != "" {
		if err = conn.Bind(l.cfg.AdminUser, l.cfg.AdminPassword); err != nil {
			closeConn(conn)

			return nil, fmt.Errorf("%w: failed to bind with service account: %w", ErrUnavailable, err)
		}
	}

	return conn, nil
}

func (l *LDAP) timeout(ctx context.Context) time.Duration {
	timeout := l.cfg.TimeoutDuration()

	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			return left
		}
	}

	return timeout
}

func closeConn(conn *ldap.Conn) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close LDAP connection")
	}
}

func (l *LDAP) search(conn *ldap.Conn, filter string, limit int) ([]*ldap.Entry, error) {
	searchRequest := ldap.NewSearchRequest(
		l.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		limit,
		l.cfg.Timeout,
		false,
		filter,
		append(append([]string(nil), searchAttributes...), l.cfg.GroupAttr),
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search: %w", ErrUnavailable, err)
	}

	return result.Entries, nil
}

// userFilter expands the configured filter for email.
func (l *LDAP) userFilter(email string) string {
	return strings.ReplaceAll(l.cfg.UserFilter, "{email}", ldap.EscapeFilter(email))
}

// FindActiveByEmail implements Directory.
func (l *LDAP) FindActiveByEmail(ctx context.Context, email string) (*Account, error) {
	conn, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	entries, err := l.search(conn, l.userFilter(strings.TrimSpace(email)), 2) //nolint:mnd // one match or ambiguous
	if err != nil {
		return nil, err
	}

	switch len(entries) {
	case 0:
		return nil, ErrAccountNotFound
	case 1:
	default:
		return nil, ErrMultipleAccounts
	}

	acc := l.entryToAccount(entries[0])
	if !acc.Active {
		return nil, ErrAccountNotFound
	}

	return &acc, nil
}

// ValidateCredential implements Directory by binding as the account.
func (l *LDAP) ValidateCredential(ctx context.Context, acc *Account, credential string) (bool, error) {
	// an empty password would be an unauthenticated bind, which servers accept
	if acc == nil || credential == "" {
		return false, nil
	}

	conn, err := l.connect(ctx)
	if err != nil {
		return false, err
	}
	defer closeConn(conn)

	if err = conn.Bind(acc.ID, credential); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return false, nil
		}

		return false, fmt.Errorf("%w: authentication failed: %w", ErrUnavailable, err)
	}

	return true, nil
}

// List implements Directory.
func (l *LDAP) List(ctx context.Context, search string) ([]Account, error) {
	conn, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	entries, err := l.search(conn, "(&(objectClass=user)(mail=*))", 0)
	if err != nil {
		return nil, err
	}

	out := make([]Account, 0, len(entries))

	for _, e := range entries {
		acc := l.entryToAccount(e)
		if acc.Matches(search) {
			out = append(out, acc)
		}
	}

	return out, nil
}

// Ping implements Directory.
func (l *LDAP) Ping(ctx context.Context) (map[string]string, error) {
	start := time.Now()

	conn, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	details := map[string]string{
		"backend": BackendLDAP,
		"server":  l.cfg.Server,
		"baseDN":  l.cfg.BaseDN,
		"bound":   strconv.FormatBool(l.cfg.AdminUser != ""),
		"latency": time.Since(start).Round(time.Millisecond).String(),
	}

	if l.cfg.Domain != "" {
		details["domain"] = l.cfg.Domain
	}

	return details, nil
}

// entryToAccount maps an LDAP entry to an Account. Group names are the CN
// of each group DN.
func (l *LDAP) entryToAccount(e *ldap.Entry) Account {
	acc := Account{
		ID:         e.DN,
		Login:      firstNonEmpty(e.GetAttributeValue("sAMAccountName"), e.GetAttributeValue("uid")),
		Email:      firstNonEmpty(e.GetAttributeValue("mail"), e.GetAttributeValue("userPrincipalName")),
		Department: e.GetAttributeValue("department"),
		Title:      e.GetAttributeValue("title"),
		ManagerID:  e.GetAttributeValue("manager"),
		Active:     true,
	}

	acc.DisplayName = firstNonEmpty(e.GetAttributeValue("displayName"), e.GetAttributeValue("cn"), acc.Login)

	if uac := e.GetAttributeValue("userAccountControl"); uac != "" {
		if flags, err := strconv.ParseInt(uac, 10, 64); err == nil && flags&uacAccountDisable != 0 {
			acc.Active = false
		}
	}

	for _, v := range e.GetAttributeValues(l.cfg.GroupAttr) {
		if name := groupName(v); name != "" {
			acc.Groups = append(acc.Groups, name)
		}
	}

	return acc
}

// groupName returns the first CN of a group DN, or the value itself when
// it is not a DN.
func groupName(value string) string {
	dn, err := ldap.ParseDN(value)
	if err != nil || len(dn.RDNs) == 0 {
		return value
	}

	for _, attr := range dn.RDNs[0].Attributes {
		if strings.EqualFold(attr.Type, "cn") {
			return attr.Value
		}
	}

	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// IsUnavailable reports whether err means the directory could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
