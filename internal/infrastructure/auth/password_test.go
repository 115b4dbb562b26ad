package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("espresso", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "espresso", hash)

	assert.NoError(t, CheckPassword(hash, "espresso"))
	assert.ErrorIs(t, CheckPassword(hash, "decaf"), ErrPasswordMismatch)

	err = CheckPassword("not-a-hash", "espresso")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
