package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/auth"
	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/db/controller/sessionstore"
	"github.com/Luizsilva-repros/intranet/internal/db/dbtest"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/directory"
	"github.com/Luizsilva-repros/intranet/internal/portal"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	ctx := context.Background()
	db := dbtest.Open(t, &models.Setting{}, &models.Session{}, &models.Category{}, &models.Link{})

	storage, err := sessionstore.New(db)
	require.NoError(t, err)
	session.Init(storage)

	store := accounts.NewStore(db)
	require.NoError(t, store.Seed(ctx, "admin@repros.com.br", "Administrador", "admin"))

	links, err := portal.New(db)
	require.NoError(t, err)
	require.NoError(t, links.Seed(ctx))

	authService, err := auth.NewService(ctx, auth.Options{
		DB:    db,
		Store: store,
		Directory: directory.Config{
			Enabled: true,
			Server:  "ldap://dc01.repros.local:389",
			BaseDN:  "DC=repros,DC=local",
		},
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Title: "Intranet",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    8080,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
	s, err := New(&handler.Deps{Config: cfg, Auth: authService, Accounts: store, Portal: links})
	require.NoError(t, err)

	return s
}

func perform(t *testing.T, s *Service, req *http.Request) *http.Response {
	t.Helper()

	resp, err := s.App.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)

	return resp
}

func TestNewRejectsNil(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilConfig)
}

func TestCheckAlive(t *testing.T) {
	s := newTestService(t)

	resp := perform(t, s, httptest.NewRequest(http.MethodGet, CheckAlivePath, nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	s.alive.Store(true)

	resp = perform(t, s, httptest.NewRequest(http.MethodGet, CheckAlivePath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetricsArePublic(t *testing.T) {
	s := newTestService(t)

	resp := perform(t, s, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAnonymousRequests(t *testing.T) {
	s := newTestService(t)

	resp := perform(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	resp = perform(t, s, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = perform(t, s, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `name="credential"`)
}

func TestLoginThenPortal(t *testing.T) {
	s := newTestService(t)

	form := url.Values{"email": {"maria.santos@repros.com.br"}, "credential": {"maria123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp := perform(t, s, req)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var cookie *http.Cookie

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	require.NotNil(t, cookie)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	resp = perform(t, s, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Folha de Pagamento")
	assert.NotContains(t, string(body), "Console AD")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/accounts", nil)
	req.AddCookie(cookie)
	assert.Equal(t, fiber.StatusForbidden, perform(t, s, req).StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	perform(t, s, req)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookie)
	assert.Equal(t, fiber.StatusUnauthorized, perform(t, s, req).StatusCode)
}
