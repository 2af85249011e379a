package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestErrorWithoutContext(t *testing.T) {
	buf := capture(t)
	Error(nil, "cart.add.fail", errors.New("boom"), map[string]any{"product": "p-1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "cart.add.fail", line["action"])
	assert.Equal(t, "boom", line["err"])
	assert.Equal(t, "p-1", line["fields"].(map[string]any)["product"])
	assert.NotEmpty(t, line["ts"])
}

func TestSecurityCarriesRequestInfo(t *testing.T) {
	buf := capture(t)
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/x", func(c *fiber.Ctx) error {
		Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.SendStatus(fiber.StatusBadRequest)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)

	out := strings.TrimSpace(buf.String())
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/x", line["path"])
	assert.NotEmpty(t, line["req_id"])
}
