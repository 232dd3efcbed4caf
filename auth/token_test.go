package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenCarriesClaims(t *testing.T) {
	SetJWTSecret("test-secret")

	signed, err := IssueToken("user-9", true)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-9", claims["user_id"])
	assert.Equal(t, true, claims["is_admin"])
	assert.Contains(t, claims, "exp")
}

func TestGeneratePassword(t *testing.T) {
	p1, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.Len(t, p1, 16)

	p2, err := GeneratePassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestGeneratePasswordEnforcesMinimumLength(t *testing.T) {
	p, err := GeneratePassword(4)
	require.NoError(t, err)
	assert.Len(t, p, 12)
}
