package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptly/internal/apperrors"
	"promptly/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// AuthService issues and validates bearer tokens.
type AuthService struct {
	users      *UserService
	jwtSecret  []byte
	tokenDurat time.Duration // zero or negative means tokens never expire
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
	}
}

// Login verifies the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user.ID)
}

// IssueToken signs a token whose subject is the user's ID.
func (s *AuthService) IssueToken(id models.UserID) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:  id.String(),
		IssuedAt: now.Unix(),
		Id:       uuid.NewString(),
	}
	if s.tokenDurat > 0 {
		claims.ExpiresAt = now.Add(s.tokenDurat).Unix()
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ResolveToken verifies a token and returns its subject. Expiry is reported
// separately only when the token is otherwise valid.
func (s *AuthService) ResolveToken(tokenString string) (models.UserID, error) {
	if tokenString == "" {
		return 0, apperrors.ErrTokenMissing
	}

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors == jwt.ValidationErrorExpired {
			return 0, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return 0, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return 0, apperrors.ErrTokenInvalid
	}

	id, err := models.ParseUserID(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", apperrors.ErrTokenInvalid, claims.Subject)
	}
	return id, nil
}

// AuthorizeOwner allows access only to the resource's owner. Callers must
// have confirmed the resource exists.
func AuthorizeOwner(resource models.Owned, id models.UserID) error {
	if resource.OwnerID() != id {
		return apperrors.ErrForbidden
	}
	return nil
}
