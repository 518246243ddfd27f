package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc, err := NewAuthService("s3cret", 7*24*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.AdminID)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc, err := NewAuthService("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewAuthService("different", time.Hour)
	require.NoError(t, err)

	foreign, err := other.GenerateToken(1)
	require.NoError(t, err)

	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		AdminID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{AdminID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService("", time.Hour)
	assert.Error(t, err)
	_, err = NewAuthService("x", 0)
	assert.Error(t, err)
}

func TestExpiresInLabel(t *testing.T) {
	cases := map[time.Duration]string{
		7 * 24 * time.Hour: "7d",
		12 * time.Hour:     "12h",
		90 * time.Minute:   "90m",
		45 * time.Second:   "45s",
	}
	for ttl, want := range cases {
		svc, err := NewAuthService("k", ttl)
		require.NoError(t, err)
		assert.Equal(t, want, svc.ExpiresInLabel())
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("admin123", hash))
	assert.False(t, CheckPasswordHash("admin124", hash))
}
