package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/models"
)

// ErrMalformed is returned when a token cannot be decoded.
var ErrMalformed = errors.New("malformed token")

// Claims is the decoded payload of a session token.
type Claims struct {
	User        map[string]interface{} `json:"user"`
	Permissions []string               `json:"permissions"`
	ExpiresAt   int64                  `json:"exp,omitempty"`
	IssuedAt    int64                  `json:"iat,omitempty"`
}

// Expired reports whether exp <= now. A token without exp never expires.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	if c.ExpiresAt == 0 {
		return false
	}
	return !now.Before(time.Unix(c.ExpiresAt, 0))
}

// Expiry returns the expiry time, or the zero time when the token has no exp.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

// Decode reads the claims of a JWT without verifying its signature. The
// client never holds the signing key; the backend verifies tokens.
func Decode(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromMap(mc)
}

func fromMap(mc jwt.MapClaims) (*Claims, error) {
	c := &Claims{}
	if u, ok := mc["user"]; ok && u != nil {
		m, ok := u.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: user claim is %T", ErrMalformed, u)
		}
		c.User = m
	}
	if p, ok := mc["permissions"]; ok && p != nil {
		list, ok := p.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: permissions claim is %T", ErrMalformed, p)
		}
		for _, item := range list {
			switch v := item.(type) {
			case string:
				c.Permissions = append(c.Permissions, v)
			case map[string]interface{}:
				if name, ok := v["permission"].(string); ok && name != "" {
					c.Permissions = append(c.Permissions, name)
				}
			}
		}
	}
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Unix()
	}
	iat, err := mc.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if iat != nil {
		c.IssuedAt = iat.Unix()
	}
	return c, nil
}

// GenerateAccessToken creates a signed session token for the user (mock backend).
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user":        u.Public(),
		"permissions": u.PermissionNames(),
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Mock.JWTSecret))
}

// verifiedToken exposes the claims of a token whose signature was checked.
type verifiedToken struct {
	claims jwt.MapClaims
}

func (t *verifiedToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
