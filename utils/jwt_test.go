package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)

	token, err := GenerateToken("user-42")
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	InitJWT("other-secret", time.Hour)
	token, err := GenerateToken("user-42")
	require.NoError(t, err)

	InitJWT("test-secret", time.Hour)
	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	InitJWT("test-secret", time.Hour)
	claims := Claims{
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	InitJWT("test-secret", time.Hour)
	_, err := VerifyToken("not.a.token")
	assert.Error(t, err)
}
