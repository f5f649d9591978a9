package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newPair(t *testing.T) (*TokenIssuer, *JWTAuthorizer) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	authorizer, err := NewJWTAuthorizer(testSecret)
	require.NoError(t, err)
	return issuer, authorizer
}

func TestConstructors(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.ErrorContains(t, err, "secret cannot be empty")

	_, err = NewTokenIssuer("s", 0)
	assert.ErrorContains(t, err, "ttl must be positive")

	_, err = NewJWTAuthorizer("")
	assert.ErrorContains(t, err, "secret cannot be empty")
}

func TestRequireAuth(t *testing.T) {
	issuer, authorizer := newPair(t)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	t.Run("accepts matching painter", func(t *testing.T) {
		ctx := WithToken(context.Background(), token)
		assert.NoError(t, authorizer.RequireAuth(ctx, "alice"))
	})

	t.Run("rejects another painter", func(t *testing.T) {
		ctx := WithToken(context.Background(), token)
		err := authorizer.RequireAuth(ctx, "bob")
		assert.ErrorIs(t, err, canvas.ErrUnauthorized)
		assert.Contains(t, err.Error(), `token subject "alice" does not match painter "bob"`)
	})

	t.Run("fails closed without token", func(t *testing.T) {
		err := authorizer.RequireAuth(context.Background(), "alice")
		assert.ErrorIs(t, err, canvas.ErrUnauthorized)
		assert.ErrorIs(t, err, ErrMissingToken)

		err = authorizer.RequireAuth(WithToken(context.Background(), ""), "alice")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		ctx := WithToken(context.Background(), "not.a.jwt")
		assert.ErrorIs(t, authorizer.RequireAuth(ctx, "alice"), canvas.ErrUnauthorized)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other, err := NewTokenIssuer("other-secret", time.Hour)
		require.NoError(t, err)
		forged, err := other.Issue("alice")
		require.NoError(t, err)

		err = authorizer.RequireAuth(WithToken(context.Background(), forged), "alice")
		assert.ErrorIs(t, err, canvas.ErrUnauthorized)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		stale, err := NewTokenIssuer(testSecret, time.Minute)
		require.NoError(t, err)
		stale.now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, err := stale.Issue("alice")
		require.NoError(t, err)

		err = authorizer.RequireAuth(WithToken(context.Background(), expired), "alice")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("rejects unsigned tokens", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Issuer: Issuer, Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		err = authorizer.RequireAuth(WithToken(context.Background(), none), "alice")
		assert.ErrorIs(t, err, canvas.ErrUnauthorized)
	})
}

func TestIssue_RejectsEmptyPainter(t *testing.T) {
	issuer, _ := newPair(t)
	_, err := issuer.Issue("")
	assert.ErrorContains(t, err, "painter identity cannot be empty")
}

func TestTokenFromContext(t *testing.T) {
	_, ok := TokenFromContext(context.Background())
	assert.False(t, ok)

	token, ok := TokenFromContext(WithToken(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}
