package token

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	tok, err := Sign(42, secret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := Parse(tok, secret)
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestParseWrongSecret(t *testing.T) {
	tok, err := Sign(42, secret)
	require.NoError(t, err)

	_, err = Parse(tok, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(42),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = Parse(expired, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseWrongSigningMethod(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(42),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(unsigned, secret)
	require.Error(t, err)
}

func TestParseBadSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = Parse(tok, secret)
	require.Error(t, err)
}
