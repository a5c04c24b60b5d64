// Package auth implements the authentication slice of the application:
// user records, the access/refresh token lifecycle, the request-gating
// middleware and the HTTP handlers for register, login, logout and refresh.
package auth

import "time"

// User represents a user in the system. Password hash and refresh token are
// excluded from JSON so they can never appear in an API response.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	HashedPassword string    `json:"-"`
	AvatarURL      string    `json:"avatar"`
	CoverImageURL  string    `json:"coverImage,omitempty"`
	RefreshToken   *string   `json:"-"` // single active value; nil when logged out
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Sanitized returns a copy with credential material cleared. The JSON tags
// already hide those fields; clearing them as well keeps copies handed to
// other layers (request context, logs) free of secrets.
func (u *User) Sanitized() *User {
	clone := *u
	clone.HashedPassword = ""
	clone.RefreshToken = nil
	return &clone
}
