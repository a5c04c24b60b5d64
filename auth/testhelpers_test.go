package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/config"
	"github.com/user/streamtube-go/media"
)

// memRepo is an in-memory UserRepository used across the package tests.
type memRepo struct {
	mu      sync.Mutex
	seq     int64
	users   map[int64]*User
	creates int
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[int64]*User)}
}

func (r *memRepo) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		if u.Email == user.Email {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
	}
	r.seq++
	r.creates++
	clone := *user
	clone.ID = r.seq
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memRepo) FindByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	out := *u
	return &out, nil
}

func (r *memRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (r *memRepo) FindByLogin(_ context.Context, login string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	login = strings.ToLower(login)
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (r *memRepo) UpdateRefreshToken(_ context.Context, id int64, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	if token == nil {
		u.RefreshToken = nil
	} else {
		value := *token
		u.RefreshToken = &value
	}
	return nil
}

func (r *memRepo) UpdatePassword(_ context.Context, id int64, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	u.HashedPassword = hashedPassword
	return nil
}

// storedRefreshToken returns the refresh token currently persisted for id.
func (r *memRepo) storedRefreshToken(id int64) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken == nil {
		return nil
	}
	value := *u.RefreshToken
	return &value
}

// fakeUploader counts uploads and can be made to fail on a given call.
type fakeUploader struct {
	mu       sync.Mutex
	calls    int
	failCall int // 1-based call number that fails; 0 means never
}

func (u *fakeUploader) Upload(_ context.Context, _ *media.File) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.failCall != 0 && u.calls == u.failCall {
		return "", apperror.NewExternalServiceError("failed to upload image", nil)
	}
	return fmt.Sprintf("https://cdn.example.com/img-%d", u.calls), nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenSecret:    "test-access-secret",
		RefreshTokenSecret:   "test-refresh-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	}
}

func newTestService(t *testing.T) (*AuthService, *memRepo, *fakeUploader) {
	t.Helper()
	repo := newMemRepo()
	uploader := &fakeUploader{}
	service := NewAuthService(repo, NewTokenService(testAuthConfig()), uploader)
	return service, repo, uploader
}

// seedUser inserts a user with a bcrypt-hashed password directly into the repo.
func seedUser(t *testing.T, repo *memRepo, username, email, password string) *User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	user, err := repo.Create(context.Background(), &User{
		Username:       username,
		Email:          email,
		FullName:       "Test User",
		HashedPassword: string(hashed),
		AvatarURL:      "https://cdn.example.com/avatar.png",
	})
	if err != nil {
		t.Fatalf("seed user error: %v", err)
	}
	return user
}

func testFile() *media.File {
	return &media.File{Reader: strings.NewReader("fake image bytes"), ContentType: "image/png"}
}
