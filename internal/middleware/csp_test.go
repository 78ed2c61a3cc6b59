package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSPPolicy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single", "default-src 'self'", "default-src 'self'"},
		{"multiple", "default-src 'self'; img-src https: data:", "default-src 'self'; img-src https: data:"},
		{"duplicate directives merged", "script-src 'self'; SCRIPT-SRC cdn.example.com 'self'", "script-src 'self' cdn.example.com"},
		{"empty parts skipped", ";; default-src 'none' ;", "default-src 'none'"},
		{"valueless directive", "upgrade-insecure-requests; default-src 'self'", "upgrade-insecure-requests; default-src 'self'"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCSPPolicy(ParseCSPPolicy(tt.raw)))
		})
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	app := fiber.New()
	app.Use(ContentSecurityPolicy("default-src 'self'; img-src *"))
	app.Get("/plain", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/custom", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'")
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, "default-src 'self'; img-src *", resp.Header.Get(fiber.HeaderContentSecurityPolicy))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/custom", nil))
	require.NoError(t, err)
	assert.Equal(t, "default-src 'none'", resp.Header.Get(fiber.HeaderContentSecurityPolicy))
}

func TestContentSecurityPolicyDefault(t *testing.T) {
	app := fiber.New()
	app.Use(ContentSecurityPolicy(""))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultCSPPolicy, resp.Header.Get(fiber.HeaderContentSecurityPolicy))
}
