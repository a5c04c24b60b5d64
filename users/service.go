package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/auth"
)

// UserService implements profile operations on top of the user repository.
type UserService struct {
	repo auth.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo auth.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetProfile returns the sanitized user record for the given id.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*auth.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	req.OldPassword = strings.TrimSpace(req.OldPassword)
	req.NewPassword = strings.TrimSpace(req.NewPassword)
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperror.NewBadRequestError("old and new passwords are required", nil)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)); err != nil {
		return apperror.NewUnauthorizedError("invalid password", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}
