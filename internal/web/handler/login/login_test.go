package login

import (
	"context"
	"encoding/json"
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
	"github.com/Luizsilva-repros/intranet/internal/identity"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	websess "github.com/Luizsilva-repros/intranet/internal/web/session"
)

// noOpViews is a minimal Fiber Views engine used for tests.
// It writes the "error" field from the provided fiber.Map (if any)
// so tests can assert error messages rendered by handlers.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, data any, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["error"]; exists && v != nil {
			_, _ = io.WriteString(w, v.(string))

			return nil
		}
	}
	// write template name to have some content
	_, _ = io.WriteString(w, name)

	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title: "Intranet",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	ctx := context.Background()
	db := dbtest.Open(t, &models.Setting{}, &models.Session{})

	storage, err := sessionstore.New(db)
	require.NoError(t, err)
	websess.Init(storage)

	store := accounts.NewStore(db)
	require.NoError(t, store.Seed(ctx, "admin@repros.com.br", "Administrador", "admin"))

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

	app := fiber.New(fiber.Config{Views: noOpViews{}})

	var s Service
	require.NoError(t, s.Init(app, &handler.Deps{Config: newTestConfig(), Auth: authService, Accounts: store}))

	return app
}

func perform(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(t, err)

	return resp
}

func postForm(t *testing.T, app *fiber.App, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return perform(t, app, req)
}

func postJSON(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return perform(t, app, req)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == websess.CookieName {
			return c
		}
	}

	return nil
}

func TestInitRejectsNil(t *testing.T) {
	var s Service
	require.ErrorIs(t, s.Init(nil, nil), handler.ErrNilDeps)
	require.ErrorIs(t, s.Init(fiber.New(), &handler.Deps{}), handler.ErrNilDeps)
}

func TestGetRendersLoginPage(t *testing.T) {
	app := newTestApp(t)

	resp := perform(t, app, httptest.NewRequest(http.MethodGet, Path, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, Template, string(body))
}

func TestPostFormLocalSuccess(t *testing.T) {
	app := newTestApp(t)

	resp := postForm(t, app, url.Values{"email": {"admin@repros.com.br"}, "credential": {"admin"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, HomePath, resp.Header.Get(fiber.HeaderLocation))

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	data := new(websess.Data)
	require.NoError(t, data.Read(cookie.Value))
	assert.Equal(t, "admin@repros.com.br", data.Identity.Email)
	assert.Equal(t, identity.ProvenanceLocal, data.Identity.Provenance)
}

func TestPostJSONDirectorySuccess(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, `{"email":"joao.silva@repros.com.br","credential":"joao123"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, identity.ProvenanceDirectory, out.Provenance)
	assert.Equal(t, identity.RoleAdmin, out.Identity.Role)
	assert.NotNil(t, sessionCookie(resp))
}

func TestPostFailuresShareOneMessage(t *testing.T) {
	app := newTestApp(t)

	testCases := []struct {
		name  string
		email string
		cred  string
	}{
		{name: "unknown", email: "nobody@repros.com.br", cred: "x"},
		{name: "wrong local credential", email: "admin@repros.com.br", cred: "wrong"},
		{name: "wrong directory credential", email: "maria.santos@repros.com.br", cred: "wrong"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postForm(t, app, url.Values{"email": {tc.email}, "credential": {tc.cred}})
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Nil(t, sessionCookie(resp))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, ErrInvalidCredentials.Error(), string(body))
		})
	}
}

func TestPostInvalidInput(t *testing.T) {
	app := newTestApp(t)

	resp := postForm(t, app, url.Values{"email": {"  "}, "credential": {"x"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, `{"email":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var out handler.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, ErrInvalidFormData.Error(), out.Error)
}
