package services

import (
	"errors"
	"fmt"

	"promptly/internal/apperrors"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore hashes and verifies passwords.
type CredentialStore interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptCredentialStore stores salted bcrypt digests. The salt is embedded
// in the digest and comparison is constant time.
type BcryptCredentialStore struct {
	cost int
}

// NewBcryptCredentialStore creates a store hashing with the given cost.
func NewBcryptCredentialStore(cost int) *BcryptCredentialStore {
	return &BcryptCredentialStore{cost: cost}
}

func (s *BcryptCredentialStore) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

func (s *BcryptCredentialStore) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
