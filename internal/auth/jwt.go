package auth

import (
	"errors"
	"fmt"
	"time"

	"securecheck/internal/officer"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const DefaultTokenTTL = 15 * time.Minute

// Claims are carried by the access token.
type Claims struct {
	OfficerID string       `json:"officer_id"`
	Role      officer.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Generate issues an access token for o.
func (ti *TokenIssuer) Generate(o *officer.Officer) (string, error) {
	now := ti.now()
	claims := Claims{
		OfficerID: o.ID,
		Role:      o.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   o.ID,
			Issuer:    "securecheck",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithIssuer("securecheck"),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OfficerID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
