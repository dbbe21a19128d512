package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(username string) map[string]string {
	return map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", registerBody("alice"), "")
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp["token"])

	// Same email again is a conflict.
	w = env.request(t, http.MethodPost, "/api/v1/auth/register", registerBody("alice"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t)

	body := registerBody("alice")
	body["password"] = "short"
	w := env.request(t, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = registerBody("alice")
	body["email"] = "not-an-email"
	w = env.request(t, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	env.registerUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp["token"])

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
