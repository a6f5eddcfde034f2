package services_test

import (
	"strings"
	"testing"

	"promptly/internal/apperrors"
	"promptly/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptCredentialStore(t *testing.T) {
	store := services.NewBcryptCredentialStore(bcrypt.MinCost)

	first, err := store.Hash("hunter2")
	require.NoError(t, err)
	second, err := store.Hash("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", first)
	assert.NotEqual(t, first, second, "every hash gets its own salt")
	assert.True(t, store.Verify("hunter2", first))
	assert.True(t, store.Verify("hunter2", second))
	assert.False(t, store.Verify("Hunter2", first))
	assert.False(t, store.Verify("hunter2", "not-a-digest"))
}

func TestBcryptCredentialStore_TooLong(t *testing.T) {
	store := services.NewBcryptCredentialStore(bcrypt.MinCost)

	_, err := store.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = store.Hash(strings.Repeat("a", 72))
	assert.NoError(t, err)
}
