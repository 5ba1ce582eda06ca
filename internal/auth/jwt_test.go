package auth

import (
	"testing"
	"time"

	"securecheck/internal/officer"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	admin := &officer.Officer{ID: "A1", Role: officer.RoleAdmin}

	t.Run("RoundTrip", func(t *testing.T) {
		ti := NewTokenIssuer("test-secret", 0)
		assert.Equal(t, DefaultTokenTTL, ti.TTL())

		token, err := ti.Generate(admin)
		require.NoError(t, err)

		claims, err := ti.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "A1", claims.OfficerID)
		assert.Equal(t, officer.RoleAdmin, claims.Role)
	})

	t.Run("Expired", func(t *testing.T) {
		ti := NewTokenIssuer("test-secret", time.Minute)
		token, err := ti.Generate(admin)
		require.NoError(t, err)

		ti.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err = ti.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewTokenIssuer("secret-a", 0).Generate(admin)
		require.NoError(t, err)

		_, err = NewTokenIssuer("secret-b", 0).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UnsignedTokenRejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{OfficerID: "A1", Role: officer.RoleAdmin})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = NewTokenIssuer("test-secret", 0).Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewTokenIssuer("test-secret", 0).Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
