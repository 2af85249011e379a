package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPLoginAndProfile(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, app, "GET", "/api/v1/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, "GET", "/api/v1/me", "garbage", nil, nil))

	tok := login(t, app, "+91 98765 43210")

	var me struct {
		ID    string `json:"id"`
		Phone string `json:"phone"`
		Name  string `json:"name"`
	}
	require.Equal(t, http.StatusOK, do(t, app, "GET", "/api/v1/me", tok, nil, &me))
	assert.Equal(t, "9876543210", me.Phone)

	require.Equal(t, http.StatusOK, do(t, app, "PUT", "/api/v1/me", tok,
		map[string]string{"name": "Asha", "email": "asha@example.com"}, &me))
	assert.Equal(t, "Asha", me.Name)
}

func TestVerifyRejectsWrongOTP(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusAccepted, do(t, app, "POST", "/api/v1/auth/otp", "", map[string]string{"phone": "9876543210"}, nil))

	var out struct {
		Error string `json:"error"`
	}
	entries := captureLogs(t, func() {
		assert.Equal(t, http.StatusUnauthorized, do(t, app, "POST", "/api/v1/auth/verify", "",
			map[string]string{"phone": "9876543210", "otp": "654321"}, &out))
	})
	assert.Equal(t, "invalid otp", out.Error)

	e := hasAction(entries, "auth.login.fail")
	require.NotNil(t, e)
	assert.Equal(t, "warning", e.Level)
	assert.Equal(t, "******3210", e.Fields["phone"])
}

func TestOTPEndpointsAreThrottled(t *testing.T) {
	app := newTestApp(t)
	last := 0
	for i := 0; i < 6; i++ {
		last = do(t, app, "POST", "/api/v1/auth/otp", "", map[string]string{"phone": "9876543210"}, nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
