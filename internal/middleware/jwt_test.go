package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHMAC(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestVerifierExtractsUserID(t *testing.T) {
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret)

	token := signHMAC(t, secret, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	got, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
}

func TestVerifierFallsBackToSubject(t *testing.T) {
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret)

	token := signHMAC(t, secret, jwt.MapClaims{
		"sub": "subject-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	got, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", got)
}

func TestVerifierRejectsBadSignature(t *testing.T) {
	v := NewHMACVerifier([]byte("right-secret"))

	token := signHMAC(t, []byte("wrong-secret"), jwt.MapClaims{"user_id": "u1"})
	_, err := v.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret)

	token := signHMAC(t, secret, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	_, err := v.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifierRejectsMissingUserID(t *testing.T) {
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret)

	token := signHMAC(t, secret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := v.VerifyToken(token)
	assert.Error(t, err)
}
