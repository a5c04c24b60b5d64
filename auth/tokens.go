package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/streamtube-go/config"
)

const (
	// TokenTypeAccess marks short-lived tokens presented on every request.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks longer-lived tokens exchanged for new pairs.
	TokenTypeRefresh = "refresh"

	tokenIssuer = "streamtube"
)

// TokenClaims is the JWT payload. The token_type claim keeps an access token
// from ever passing refresh verification even though the secrets differ.
type TokenClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed access and refresh tokens.
// It is a pure function of its configuration; nothing here touches storage.
type TokenService struct {
	cfg config.AuthConfig
}

// NewTokenService creates a TokenService from explicit configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenTypeAccess, s.cfg.AccessTokenSecret, s.cfg.AccessTokenDuration)
}

// IssueRefreshToken signs a longer-lived refresh token for the user.
func (s *TokenService) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenTypeRefresh, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenDuration)
}

func (s *TokenService) issue(userID int64, tokenType, secret string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(duration)
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

// Verify parses a token of the expected type and returns its claims. It
// fails on a bad signature, expiry, malformed input, an unexpected signing
// method, or a token-type mismatch.
func (s *TokenService) Verify(tokenString, expectedType string) (*TokenClaims, error) {
	secret := s.cfg.AccessTokenSecret
	if expectedType == TokenTypeRefresh {
		secret = s.cfg.RefreshTokenSecret
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}
	return claims, nil
}
