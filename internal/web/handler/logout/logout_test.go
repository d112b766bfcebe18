package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luizsilva-repros/intranet/internal/config"
	"github.com/Luizsilva-repros/intranet/internal/db/controller/sessionstore"
	"github.com/Luizsilva-repros/intranet/internal/db/dbtest"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
	"github.com/Luizsilva-repros/intranet/internal/web/handler"
	"github.com/Luizsilva-repros/intranet/internal/web/handler/login"
	"github.com/Luizsilva-repros/intranet/internal/web/session"
)

func TestLogoutDeletesSession(t *testing.T) {
	storage, err := sessionstore.New(dbtest.Open(t, &models.Session{}))
	require.NoError(t, err)
	session.Init(storage)

	data := &session.Data{Identity: identity.Identity{Email: "admin@repros.com.br", Role: identity.RoleAdmin}}
	require.NoError(t, data.Write("abc", time.Minute))

	app := fiber.New()

	var s Service
	require.NoError(t, s.Init(app, &handler.Deps{Config: &config.Config{}}))

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, login.Path, resp.Header.Get(fiber.HeaderLocation))

	require.ErrorIs(t, new(session.Data).Read("abc"), session.ErrNotFound)

	req = httptest.NewRequest(http.MethodPost, Path, nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
