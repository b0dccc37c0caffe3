package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funneltrack/internal/testsupport"
	"funneltrack/internal/users"
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func sessionCookieValue(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == testsupport.SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

func TestProcessLoginAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	testsupport.CreateTestUserForAuth(t, db, "admin@example.com", "correct-password", users.RoleAdmin)

	t.Run("success sets session cookie", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/api/admin/auth", fiber.Map{
			"email":    "admin@example.com",
			"password": "correct-password",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		assert.NotEmpty(t, sessionCookieValue(resp))

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Login successful", body["message"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "admin@example.com", user["email"])
		assert.Equal(t, users.RoleAdmin, user["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/api/admin/auth", fiber.Map{
			"email":    "admin@example.com",
			"password": "wrong",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid credentials", body["message"])
	})

	t.Run("unknown email gets the same response", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/api/admin/auth", fiber.Map{
			"email":    "nobody@example.com",
			"password": "whatever",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Invalid credentials", body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/api/admin/auth", fiber.Map{"email": "admin@example.com"})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSessionStatusAction(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	user := testsupport.CreateTestUserForAuth(t, db, "status@example.com", "correct-password", users.RoleAdmin)

	t.Run("unauthenticated", func(t *testing.T) {
		req := jsonRequest(t, "GET", "/api/admin/auth", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["authenticated"])
	})

	t.Run("authenticated", func(t *testing.T) {
		req := jsonRequest(t, "GET", "/api/admin/auth", nil)
		req.Header.Set("Cookie", testsupport.LoginTestSession(t, db, user))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, "status@example.com", body["user"].(map[string]any)["email"])
	})
}

func TestLogoutActionRevokesSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateMinimalTestApp(t, db)
	user := testsupport.CreateTestUserForAuth(t, db, "logout@example.com", "correct-password", users.RoleAdmin)
	cookie := testsupport.LoginTestSession(t, db, user)

	req := jsonRequest(t, "DELETE", "/api/admin/auth", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Logout successful", body["message"])

	// The revoked session no longer opens the admin API.
	req = jsonRequest(t, "GET", "/api/admin/analytics", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout is idempotent.
	req = jsonRequest(t, "DELETE", "/api/admin/auth", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
