package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promptly/internal/apperrors"
	"promptly/internal/models"
	"promptly/internal/repositories"
)

// UserService handles registration and credential checks.
type UserService struct {
	repo  repositories.UserRepository
	creds CredentialStore

	// compared against when the username is unknown so that both failure
	// paths pay for one hash comparison
	dummyDigest string
}

// NewUserService creates a new UserService. It fails when creds cannot
// produce the digest used for unknown usernames.
func NewUserService(repo repositories.UserRepository, creds CredentialStore) (*UserService, error) {
	dummy, err := creds.Hash("promptly-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential check: %w", err)
	}
	return &UserService{
		repo:        repo,
		creds:       creds,
		dummyDigest: dummy,
	}, nil
}

// Register creates a user. The lookup only gives an early answer; the
// repository's uniqueness constraint decides concurrent registrations.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}

	_, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("user %q: %w", models.NormalizeUsername(username), apperrors.ErrAlreadyExists)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	digest, err := s.creds.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, username, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// VerifyCredentials returns the matching user or ErrInvalidCredentials. An
// unknown username and a wrong password are indistinguishable to callers.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.creds.Verify(password, s.dummyDigest)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile returns the user with the given ID.
func (s *UserService) GetProfile(ctx context.Context, id models.UserID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
