package auth

import "context"

// contextKey is a private type so this package's context keys cannot collide
// with keys set by other packages.
type contextKey string

const userContextKey contextKey = "auth_user"

// NewContextWithUser returns a child context carrying the authenticated user.
// The middleware stores a sanitized copy; downstream handlers never see
// credential material.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user set by the middleware.
// The second return value reports whether a user was attached.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
