package auth

import (
	"testing"

	"yavuzel-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "test-secret-test-secret-test-secret!"
	user := &models.User{
		ID:        42,
		Email:     "a@b.com",
		TCVKNHash: HashTCVKN("12345678901"),
	}

	tokenStr, err := GenerateToken(secret, user)
	require.NoError(t, err)

	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, user.TCVKNHash, claims.TCVKNHash)
}
