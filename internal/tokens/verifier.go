package tokens

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/middleware"
)

// Verifier checks HS256 signatures and expiry of session tokens issued by
// GenerateAccessToken. It satisfies middleware.Verifier.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token secret not configured")
	}
	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, mc, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return &verifiedToken{claims: mc}, nil
}
