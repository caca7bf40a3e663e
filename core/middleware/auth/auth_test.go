package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		path   string
		header map[string]string
		want   int
	}{
		{"Disabled", Config{}, "/x", nil, 200},
		{"Missing key", Config{ApiKey: "k"}, "/x", nil, 401},
		{"Wrong key", Config{ApiKey: "k"}, "/x", map[string]string{"X-API-Key": "nope"}, 401},
		{"Header key", Config{ApiKey: "k"}, "/x", map[string]string{"X-API-Key": "k"}, 200},
		{"Bearer key", Config{ApiKey: "k"}, "/x", map[string]string{"Authorization": "Bearer k"}, 200},
		{"Skipped path", Config{ApiKey: "k", Skip: []string{"/health"}}, "/health", nil, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := newApp(tt.cfg).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
