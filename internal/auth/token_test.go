package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	subject := &domain.User{ID: 42, Name: "Juan Perez", Role: domain.RoleAnalista, Area: "IT"}

	token, expiresAt, err := tm.GenerateToken(subject)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Juan Perez", claims.Name)
	assert.Equal(t, domain.RoleAnalista, claims.Role)
	assert.Equal(t, "IT", claims.Area)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken(&domain.User{ID: 1, Name: "X"})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	_, err := tm.ParseToken("not-a-token")
	assert.Error(t, err)
}
