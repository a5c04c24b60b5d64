package auth

import (
	"context"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/streamtube-go/apperror"
	"github.com/user/streamtube-go/media"
)

// AuthService orchestrates registration, login, logout and token refresh on
// top of the user repository, the token service and the image store.
type AuthService struct {
	repo     UserRepository
	tokens   *TokenService
	uploader media.Uploader
}

// NewAuthService creates a new AuthService with its dependencies.
func NewAuthService(repo UserRepository, tokens *TokenService, uploader media.Uploader) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		uploader: uploader,
	}
}

// Register validates the registration input, uploads the avatar (required)
// and cover image (optional), and creates the user. Username and email are
// stored lowercase. Validation runs before any database or storage call.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, avatar, coverImage *media.File) (*User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.FullName == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperror.NewBadRequestError("all fields are required", nil)
	}

	username := strings.ToLower(req.Username)
	email := strings.ToLower(req.Email)

	// Pre-check for a friendly Conflict; the unique indexes remain the
	// source of truth if a concurrent registration slips through.
	if _, err := s.repo.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, apperror.NewConflictError("user with email or username already exists", nil)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	if avatar == nil {
		return nil, apperror.NewBadRequestError("avatar is required", nil)
	}

	avatarURL, err := s.uploader.Upload(ctx, avatar)
	if err != nil || avatarURL == "" {
		return nil, apperror.NewBadRequestError("avatar upload failed", err)
	}

	coverImageURL := ""
	if coverImage != nil {
		coverImageURL, err = s.uploader.Upload(ctx, coverImage)
		if err != nil {
			// The cover image is optional; a failed upload does not block
			// registration.
			log.Printf("cover image upload failed: %v", err)
			coverImageURL = ""
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	created, err := s.repo.Create(ctx, &User{
		Username:       username,
		Email:          email,
		FullName:       req.FullName,
		HashedPassword: string(hashedPassword),
		AvatarURL:      avatarURL,
		CoverImageURL:  coverImageURL,
	})
	if err != nil {
		return nil, err
	}
	return created.Sanitized(), nil
}

// Login authenticates a user by username or email plus password, issues a
// token pair and persists the new refresh token.
//
// The "invalid credentials" / "invalid password" message split matches the
// existing API contract.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if login == "" || req.Password == "" {
		return nil, apperror.NewBadRequestError("username or email is required with password", nil)
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError("invalid credentials", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewUnauthorizedError("invalid password", nil)
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:         user.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token, invalidating every previously
// issued refresh token for the user.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.repo.UpdateRefreshToken(ctx, userID, nil)
}

// Refresh exchanges a valid refresh token for a new pair, rotating both
// tokens. The presented token must exactly match the stored one; that
// comparison is the only revocation mechanism.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(presented, TokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewUnauthorizedError(err.Error(), err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError("user not found", nil)
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return nil, apperror.NewUnauthorizedError("invalid token", nil)
	}

	return s.issuePair(ctx, user.ID)
}

// issuePair issues both tokens and persists the new refresh token before
// returning. Failures are wrapped into a generic internal error so signing
// details never reach the client.
func (s *AuthService) issuePair(ctx context.Context, userID int64) (*TokenPair, error) {
	accessToken, _, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, apperror.NewInternalError("something went wrong while generating tokens", err)
	}

	refreshToken, _, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, apperror.NewInternalError("something went wrong while generating tokens", err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, userID, &refreshToken); err != nil {
		return nil, apperror.NewInternalError("something went wrong while generating tokens", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
