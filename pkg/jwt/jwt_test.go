package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("secret", "getmentor-auth", 1)

	token, err := tm.GenerateToken("user-1", "user@example.com", "User One")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, time.Hour, tm.GetExpirationTime())
}

func TestGenerateToken_EmptyUser(t *testing.T) {
	tm := NewTokenManager("secret", "", 1)
	_, err := tm.GenerateToken("", "", "")
	assert.ErrorIs(t, err, ErrInvalidClaim)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", "iss", 1).GenerateToken("user-1", "", "")
	require.NoError(t, err)

	_, err = NewTokenManager("other", "iss", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	token, err := NewTokenManager("secret", "someone-else", 1).GenerateToken("user-1", "", "")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "getmentor-auth", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	claims := UserClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_SubjectFallback(t *testing.T) {
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := NewTokenManager("secret", "", 1).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", got.UserID)
}
