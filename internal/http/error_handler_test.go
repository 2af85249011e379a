package handlers_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/http/handlers"
)

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        html.New("../../web/templates", ".html"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	app.Get("/api/v1/err", func(c *fiber.Ctx) error { return errors.New("db timeout: secret trace") })
	app.Get("/page", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/api/v1/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	var entries []logEntry
	entries = captureLogs(t, func() {
		for _, path := range []string{"/api/v1/err", "/page"} {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), "Something went wrong", path)
			assert.False(t, strings.Contains(string(body), "secret"), "internal details leaked on %s", path)
		}
	})
	e := hasAction(entries, "server.error")
	require.NotNil(t, e)
	assert.Equal(t, "error", e.Level)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/teapot", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.JSONEq(t, `{"error":"short and stout"}`, string(body))
}

func TestBusinessErrorsKeepTheirMessage(t *testing.T) {
	app := newTestApp(t)
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/stores/st-nope/products", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"not found"}`, string(body))
	})
	e := hasAction(entries, "stores.products.fail")
	require.NotNil(t, e)
	assert.Contains(t, e.Fields["error"], "st-nope")
}
