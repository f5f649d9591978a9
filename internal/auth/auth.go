// Package auth provides the bearer-token implementation of canvas.Authorizer.
//
// A painter proves its identity with an HS256 JWT whose subject is the painter
// identity. Transports place the raw token on the request context with
// WithToken; the authorizer never sees transport details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the value of the "iss" claim on every token.
const Issuer = "pixellar"

// ErrMissingToken means the call carried no bearer token at all.
var ErrMissingToken = errors.New("missing bearer token")

type tokenKey struct{}

// WithToken returns a context carrying the caller's raw bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// TokenIssuer mints painter tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer signing with secret. Tokens expire after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token proving the holder acts as painter.
func (i *TokenIssuer) Issue(painter canvas.Identity) (string, error) {
	if painter == "" {
		return "", fmt.Errorf("painter identity cannot be empty")
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   string(painter),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// JWTAuthorizer implements canvas.Authorizer over HS256 bearer tokens.
type JWTAuthorizer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTAuthorizer creates an authorizer verifying tokens signed with secret.
func NewJWTAuthorizer(secret string) (*JWTAuthorizer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	return &JWTAuthorizer{secret: []byte(secret), now: time.Now}, nil
}

// RequireAuth succeeds only when the context carries a valid, unexpired token
// whose subject is actor. Every failure wraps canvas.ErrUnauthorized.
func (a *JWTAuthorizer) RequireAuth(ctx context.Context, actor canvas.Identity) error {
	raw, ok := TokenFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: %w", canvas.ErrUnauthorized, ErrMissingToken)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", canvas.ErrUnauthorized, err)
	}

	if claims.Subject != string(actor) {
		return fmt.Errorf("%w: token subject %q does not match painter %q", canvas.ErrUnauthorized, claims.Subject, actor)
	}

	return nil
}
