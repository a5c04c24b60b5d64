package auth

import (
	"net/http"
	"strings"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/response"
)

// AccessTokenCookie and RefreshTokenCookie are the cookie names the API sets
// and reads for the token pair.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Middleware gates protected routes. It verifies the access token and
// attaches the resolved user to the request context.
type Middleware struct {
	tokens *TokenService
	repo   UserRepository
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(tokens *TokenService, repo UserRepository) *Middleware {
	return &Middleware{tokens: tokens, repo: repo}
}

// RequireAuth rejects the request with 401 unless a valid access token is
// presented and resolves to an existing user. Every failure mode (missing
// token, bad signature, expiry, unknown user) gets the same generic message
// so callers cannot probe which condition failed.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractAccessToken(r)
		if tokenString == "" {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", nil))
			return
		}

		claims, err := m.tokens.Verify(tokenString, TokenTypeAccess)
		if err != nil {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", err))
			return
		}

		user, err := m.repo.FindByID(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, r, apperror.NewUnauthorizedError("access denied", err))
			return
		}

		ctx := NewContextWithUser(r.Context(), user.Sanitized())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractAccessToken reads the access token from its cookie, falling back to
// a bearer Authorization header.
func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
