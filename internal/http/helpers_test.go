package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

const testPaymentSecret = "test-payment-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret: "test-secret", TokenTTL: time.Hour, DevOTP: "123456",
		PaymentSecret: testPaymentSecret, Currency: "INR",
	}
	app := fiber.New(fiber.Config{Views: html.New("../../web/templates", ".html")})
	app.Use(requestid.New())
	handlers.NewDeps(db, cfg).Register(app.Group("/api/v1"))
	return app
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func do(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func login(t *testing.T, app *fiber.App, phone string) string {
	t.Helper()
	require.Equal(t, http.StatusAccepted, do(t, app, "POST", "/api/v1/auth/otp", "", map[string]string{"phone": phone}, nil))
	var out struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, do(t, app, "POST", "/api/v1/auth/verify", "",
		map[string]string{"phone": phone, "otp": "123456"}, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

type logEntry struct {
	Action string         `json:"action"`
	Level  string         `json:"level"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(io.Discard)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
