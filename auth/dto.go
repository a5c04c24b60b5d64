package auth

// RegisterRequest carries the multipart form fields of a registration.
// The avatar and cover image files travel separately as media.File values.
type RegisterRequest struct {
	FullName string `json:"fullName" example:"Alice Example"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the login request payload. Either username or
// email identifies the account.
type LoginRequest struct {
	Username string `json:"username,omitempty" example:"alice"`
	Email    string `json:"email,omitempty" example:"alice@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// RefreshRequest is the body fallback for clients that do not send the
// refresh token cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// TokenPair bundles a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// LoginResponse is returned on successful login. The tokens are also set as
// cookies; the duplication in the body is part of the API contract.
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
