package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/Luizsilva-repros/intranet/internal/logger/adapter/fiber"
	"github.com/Luizsilva-repros/intranet/internal/logger"
)

type accessEntry struct {
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Error  string `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(adapter.New(cfg))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/checkalive", func(c fiber.Ctx) error {
		return c.SendString("alive")
	})
	app.Get("/fail", func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	return app
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		target string
		cfg    logger.Log
		want   *accessEntry
	}{
		{
			name:   "logs request with query",
			target: "/?page=2",
			want:   &accessEntry{Status: http.StatusOK, URI: "/?page=2", Method: http.MethodGet},
		},
		{
			name:   "logs chain error with status from error handler",
			target: "/fail",
			want:   &accessEntry{Status: http.StatusTeapot, URI: "/fail", Method: http.MethodGet, Error: "short and stout"},
		},
		{
			name:   "skips checkalive",
			target: "/checkalive",
			cfg:    logger.Log{DisableCheckAlive: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			app := newApp(adapter.Config{Config: tt.cfg, CheckAliveURI: "/checkalive", Output: &out})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.NoError(t, err)
			_ = resp.Body.Close()

			if tt.want == nil {
				assert.Empty(t, out.String())
				return
			}

			var got accessEntry
			require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
			assert.Equal(t, *tt.want, got)
			assert.Equal(t, tt.want.Status, resp.StatusCode)
		})
	}
}
