package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	deps := newTestDeps()
	deps.users.signupUser = testUser
	router := deps.router(t)

	rec := do(router, http.MethodPost, "/auth/signup", `{"email":"ana@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		User userView `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignupErrors(t *testing.T) {
	deps := newTestDeps()
	router := deps.router(t)

	deps.users.signupErr = domain.ErrAlreadyExists
	rec := do(router, http.MethodPost, "/auth/signup", `{"email":"ana@example.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	deps.users.signupErr = fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	rec = do(router, http.MethodPost, "/auth/signup", `{"email":"ana@example.com","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "at least 8 characters")
	assert.Equal(t, "/signup", body.Redirect)
}

func TestTokenPasswordGrant(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = time.Now })

	deps := newTestDeps()
	deps.users.session = &usersvc.Session{
		User:        testUser,
		AccessToken: testToken,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Hour),
	}
	router := deps.router(t)

	rec := postForm(router, "/auth/token", url.Values{
		"grant_type": {"password"},
		"username":   {"ana@example.com"},
		"password":   {"s3cret-pass"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testToken, body.AccessToken)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, 3600, body.ExpiresIn)
	assert.Equal(t, "ana@example.com", body.User.Email)
}

func TestTokenRejects(t *testing.T) {
	deps := newTestDeps()
	deps.users.loginErr = usersvc.ErrInvalidCredentials
	router := deps.router(t)

	rec := postForm(router, "/auth/token", url.Values{"grant_type": {"password"}, "username": {"ana@example.com"}, "password": {"nope"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_credentials", body.Error)
	assert.Equal(t, "/login", body.Redirect)

	rec = postForm(router, "/auth/token", url.Values{"grant_type": {"client_credentials"}, "username": {"a"}, "password": {"b"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(router, "/auth/token", url.Values{"grant_type": {"password"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeAndLogout(t *testing.T) {
	deps := newTestDeps()
	router := deps.router(t)

	rec := authed(router, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body profileView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testUser.Email, body.User.Email)
	assert.NotNil(t, body.Orders)

	rec = authed(router, http.MethodDelete, "/auth/token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testToken, deps.users.loggedOut)
}
