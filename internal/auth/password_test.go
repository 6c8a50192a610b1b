package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndCompare(t *testing.T) {
	hashed, err := HashPassword("s3creta", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3creta", hashed)

	assert.NoError(t, ComparePassword(hashed, "s3creta"))
	assert.Error(t, ComparePassword(hashed, "otra"))
}
