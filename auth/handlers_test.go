package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	tokens := NewTokenService(testAuthConfig())
	service := NewAuthService(repo, tokens, &fakeUploader{})
	handlers := NewHandlers(service)
	mw := NewMiddleware(tokens, repo)

	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", handlers.HandleRegister())
		r.Post("/login", handlers.HandleLogin())
		r.Post("/refresh", handlers.HandleRefresh())
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Post("/logout", handlers.HandleLogout())
		})
	})
	return r, repo
}

// multipartBody builds a registration form; avatar and cover are optional.
func multipartBody(t *testing.T, fields map[string]string, avatar, cover bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if avatar {
		fw, err := w.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader("fake avatar bytes"))
		require.NoError(t, err)
	}
	if cover {
		fw, err := w.CreateFormFile("coverImage", "cover.png")
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader("fake cover bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func registerFields() map[string]string {
	return map[string]string{
		"fullName": "Alice",
		"username": "alice",
		"email":    "a@x.com",
		"password": "p1",
	}
}

func doRegister(t *testing.T, router http.Handler, fields map[string]string, avatar bool) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, avatar, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doLogin(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestHandleRegister_Created(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doRegister(t, router, registerFields(), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)

	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["avatar"])
	assert.NotContains(t, user, "password", "password must never appear in a response")
	assert.NotContains(t, user, "refreshToken")
}

func TestHandleRegister_MissingField(t *testing.T) {
	t.Parallel()
	router, repo := newTestRouter(t)

	fields := registerFields()
	delete(fields, "email")
	rec := doRegister(t, router, fields, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Zero(t, repo.creates)
}

func TestHandleRegister_MissingAvatar(t *testing.T) {
	t.Parallel()
	router, repo := newTestRouter(t)

	rec := doRegister(t, router, registerFields(), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.creates)
}

func TestHandleRegister_Duplicate(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doRegister(t, router, registerFields(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRegister(t, router, registerFields(), true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleLogin_SetsCookies(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, registerFields(), true).Code)

	rec := doLogin(t, router, `{"username":"alice","password":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var accessCookie, refreshCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case AccessTokenCookie:
			accessCookie = c
		case RefreshTokenCookie:
			refreshCookie = c
		}
	}
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)
	assert.NotEmpty(t, accessCookie.Value)
	assert.NotEmpty(t, refreshCookie.Value)
	assert.True(t, accessCookie.HttpOnly)
	assert.True(t, accessCookie.Secure)
	assert.True(t, refreshCookie.HttpOnly)
	assert.True(t, refreshCookie.Secure)

	env := decodeEnvelope(t, rec)
	var data struct {
		User         map[string]any `json:"user"`
		AccessToken  string         `json:"accessToken"`
		RefreshToken string         `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)
	assert.NotContains(t, data.User, "password")
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, registerFields(), true).Code)

	rec := doLogin(t, router, `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}

func TestHandleRefresh_MissingToken(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleRefresh_BodyFallback(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, registerFields(), true).Code)

	loginRec := doLogin(t, router, `{"email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)
	refresh := cookieValue(t, loginRec, RefreshTokenCookie)
	require.NotEmpty(t, refresh)

	body, err := json.Marshal(RefreshRequest{RefreshToken: refresh})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

// TestAuthFlow_EndToEnd walks register -> login -> logout -> refresh with the
// pre-logout token, which must fail.
func TestAuthFlow_EndToEnd(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	rec := doRegister(t, router, registerFields(), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	loginRec := doLogin(t, router, `{"username":"alice","password":"p1"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)
	access := cookieValue(t, loginRec, AccessTokenCookie)
	refresh := cookieValue(t, loginRec, RefreshTokenCookie)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// Logout with the access token cookie.
	logoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	logoutReq.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: access})
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logoutReq)
	require.Equal(t, http.StatusOK, logoutRec.Code, logoutRec.Body.String())

	// Both cookies are cleared.
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		found := false
		for _, c := range logoutRec.Result().Cookies() {
			if c.Name == name {
				found = true
				assert.Empty(t, c.Value)
				assert.Negative(t, c.MaxAge)
			}
		}
		assert.True(t, found, "logout must clear cookie %s", name)
	}

	// The old refresh token is now unusable.
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	refreshReq.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	refreshRec := httptest.NewRecorder()
	router.ServeHTTP(refreshRec, refreshReq)
	assert.Equal(t, http.StatusUnauthorized, refreshRec.Code)
}

func TestHandleLogout_RequiresAuth(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
