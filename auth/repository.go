package auth

import "context"

// UserRepository abstracts persistence of user records. The service layer
// depends on this interface only; the pgx implementation lives in
// postgres.go and tests substitute an in-memory fake.
type UserRepository interface {
	// Create inserts a new user and returns it with ID and timestamps set.
	// A duplicate username or email yields a Conflict error.
	Create(ctx context.Context, user *User) (*User, error)

	// FindByID returns the user with the given id, or a NotFound error.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByUsernameOrEmail returns the first user matching either value,
	// or a NotFound error. Used for the registration uniqueness pre-check.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// FindByLogin resolves a login identifier that may be a username or an
	// email address, or returns a NotFound error.
	FindByLogin(ctx context.Context, login string) (*User, error)

	// UpdateRefreshToken overwrites the stored refresh token for the user.
	// A nil token clears it.
	UpdateRefreshToken(ctx context.Context, id int64, token *string) error

	// UpdatePassword replaces the stored password hash for the user.
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}
