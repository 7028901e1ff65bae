package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	srv       *Server
	clock     *timex.FixedClock
	blacklist *services.BlacklistService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &timex.FixedClock{T: time.Date(2025, 4, 5, 6, 7, 8, 0, time.UTC)}
	rm := repomanager.NewInMemoryRepositoryManager()
	us := services.NewUserService(nil, rm, bcrypt.MinCost, clock.Now)
	bs := services.NewBlacklistService(nil, rm, clock.Now)
	secret := []byte("http-test-secret")
	iss, err := auth.NewIssuer(secret, clock.Now)
	require.NoError(t, err)
	val, err := auth.NewValidator(secret, bs, clock.Now)
	require.NoError(t, err)

	as := services.NewAuthService(us, bs, iss, val)
	return &testEnv{srv: NewServer("127.0.0.1:0", logging.Nop{}, as, time.Second), clock: clock, blacklist: bs}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func registerBody(email string) map[string]string {
	return map[string]string{
		"first_name":         "Ada",
		"last_name":          "Lovelace",
		"email":              email,
		"password":           "analytical",
		"confirmed_password": "analytical",
	}
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "no error envelope in %v", body)
	assert.Equal(t, false, body["success"])
	return e["code"].(string)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, status, body)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	return user["token"].(string)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	status, body := e.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("Ada@Example.com"), "")
	require.Equal(t, http.StatusCreated, status, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "success", data["status"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, false, user["is_verified"])
	assert.NotContains(t, user, "password")

	status, body = e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("ada@example.com"), "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing first name", func(b map[string]string) { delete(b, "first_name") }},
		{"blank last name", func(b map[string]string) { b["last_name"] = "" }},
		{"bad email", func(b map[string]string) { b["email"] = "not-an-email" }},
		{"short password", func(b map[string]string) { b["password"], b["confirmed_password"] = "abc", "abc" }},
		{"mismatch", func(b map[string]string) { b["confirmed_password"] = "different" }},
		{"whitespace names", func(b map[string]string) { b["first_name"] = "   " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			b := registerBody("v@example.com")
			tt.mutate(b)

			status, body := e.do(t, http.MethodPost, "/api/v1/auth/register", b, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
		})
	}
}

func TestRegister_BadBody(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_GenericFailure(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("l@example.com"), "")
	require.Equal(t, http.StatusCreated, status)

	s1, wrongPw := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "l@example.com", "password": "wrong-one"}, "")
	s2, unknown := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "x@example.com", "password": "analytical"}, "")

	assert.Equal(t, http.StatusUnauthorized, s1)
	assert.Equal(t, http.StatusUnauthorized, s2)
	assert.Equal(t, wrongPw, unknown)
}

func TestLoginMeLogout(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("flow@example.com"), "")
	require.Equal(t, http.StatusCreated, status)

	token := e.login(t, "FLOW@example.com", "analytical")

	status, body := e.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "flow@example.com", body["data"].(map[string]any)["email"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = e.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout_RevocationSurvivesLaterRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	status, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("keep@example.com"), "")
	require.Equal(t, http.StatusCreated, status)

	token := e.login(t, "keep@example.com", "analytical")

	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusNoContent, status)

	// same length, so a reused request buffer would overwrite it in place
	other := strings.Repeat("Z", len(token))
	for i := 0; i < 50; i++ {
		status, _ = e.do(t, http.MethodGet, "/api/v1/users/me", nil, other)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	revoked, err := e.blacklist.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = e.blacklist.IsRevoked(ctx, other)
	require.NoError(t, err)
	assert.False(t, revoked)

	status, _ = e.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMe_ExpiredToken(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, http.MethodPost, "/api/v1/auth/register", registerBody("old@example.com"), "")
	require.Equal(t, http.StatusCreated, status)
	token := e.login(t, "old@example.com", "analytical")

	e.clock.Advance(auth.TokenLifetime + time.Second)

	status, _ = e.do(t, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

type failingAuth struct{ Authenticator }

func (failingAuth) Login(context.Context, string, string) (string, *models.User, error) {
	return "", nil, errors.New("db error: connection reset")
}

func TestLogin_StorageFaultHidesDetails(t *testing.T) {
	e := &testEnv{srv: NewServer("127.0.0.1:0", logging.Nop{}, failingAuth{}, time.Second)}

	status, body := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "a@example.com", "password": "pw"}, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, body))
	assert.Equal(t, common.ErrorInternal.Error(), body["error"].(map[string]any)["message"])
}

func TestNotFound_UsesEnvelope(t *testing.T) {
	e := newEnv(t)
	status, body := e.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "HTTP_ERROR", errorCode(t, body))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	e := newEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}
