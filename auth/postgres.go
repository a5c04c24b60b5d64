package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/streamtube-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

const userColumns = `id, username, email, full_name, password, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

// PostgresUserRepository is the pgx-backed UserRepository.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a repository on top of the given pool.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.HashedPassword,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Unique-constraint violations are translated to
// Conflict errors naming the offending field; the database remains the
// source of truth for uniqueness even though the service pre-checks.
func (r *PostgresUserRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, full_name, password, avatar_url, cover_image_url)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.FullName, user.HashedPassword,
		user.AvatarURL, user.CoverImageURL,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already exists", err)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", err)
			}
			return nil, apperror.NewConflictError("user already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return created, nil
}

// FindByID returns the user with the given id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return user, nil
}

// FindByUsernameOrEmail returns the first user matching either value.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2`
	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(username), strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}
	return user, nil
}

// FindByLogin resolves a login identifier that may be a username or an email.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	var query string
	if strings.Contains(login, "@") {
		query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	} else {
		query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	}

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(login)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}
	return user, nil
}

// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
// Per-row UPDATE atomicity is what guarantees a single active token.
func (r *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return apperror.NewDatabaseError("failed to update refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	query := `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hashedPassword)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	return nil
}
