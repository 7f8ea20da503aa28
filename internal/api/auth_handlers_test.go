package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/service"
)

func TestSignUp(t *testing.T) {
	server, _ := setupTestServer(t)

	req := map[string]string{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "correct horse battery",
		"first_name": "Alice",
		"last_name":  "Reader",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", req, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			ID           string `json:"id"`
			Username     string `json:"username"`
			PasswordHash string `json:"-"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "alice", envelope.Data.Username)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.NotContains(t, rec.Body.String(), "argon2id")
}

func TestSignUpValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	req := map[string]string{
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", req, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Contains(t, envelope.Details, "username")
	assert.Contains(t, envelope.Details, "email")
	assert.Contains(t, envelope.Details, "password")
}

func TestSignUpDuplicate(t *testing.T) {
	server, _ := setupTestServer(t)

	req := map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "correct horse battery",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", req, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", req, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	server, _ := setupTestServer(t)
	signUpAndLogin(t, server, "carol")

	req := map[string]string{
		"username": "carol",
		"password": "wrong password here",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown users get the same answer as wrong passwords.
	req["username"] = "nobody"
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	server, _ := setupTestServer(t)

	signUp := map[string]string{
		"username": "dave",
		"email":    "dave@example.com",
		"password": "correct horse battery",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", signUp, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	login := map[string]string{"username": "dave", "password": "correct horse battery"}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", login, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var loginEnvelope struct {
		Data service.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginEnvelope))
	oldRefresh := loginEnvelope.Data.RefreshToken
	require.NotEmpty(t, oldRefresh)

	refresh := map[string]string{"refresh_token": oldRefresh}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", refresh, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshEnvelope struct {
		Data service.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshEnvelope))
	assert.NotEmpty(t, refreshEnvelope.Data.AccessToken)
	assert.NotEqual(t, oldRefresh, refreshEnvelope.Data.RefreshToken)

	// The rotated-out token no longer works.
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", refresh, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	server, _ := setupTestServer(t)

	signUp := map[string]string{
		"username": "erin",
		"email":    "erin@example.com",
		"password": "correct horse battery",
	}
	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sign-up", signUp, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	login := map[string]string{"username": "erin", "password": "correct horse battery"}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", login, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data service.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	logout := map[string]string{"refresh_token": envelope.Data.RefreshToken}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", logout, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	refresh := map[string]string{"refresh_token": envelope.Data.RefreshToken}
	rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/refresh", refresh, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBadRequestBody(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptestRawBody(t, server, http.MethodPost, "/api/v1/auth/login", `{"username": `)
	assert.Equal(t, http.StatusBadRequest, req.Code)
}
