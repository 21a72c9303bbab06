package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey  = "claims"
	UserUIDKey = "uid"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// acceptedSchemes lists the Authorization schemes the backend understands.
// The web client sends "JWT <token>"; "Bearer" is accepted for tooling.
var acceptedSchemes = []string{"JWT", "Bearer"}

// tokenFromHeader extracts the raw token from an Authorization header value.
func tokenFromHeader(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", false
	}
	for _, s := range acceptedSchemes {
		if strings.EqualFold(scheme, s) {
			return tok, true
		}
	}
	return "", false
}

// AuthMiddleware verifies the session token and stores its claims and the
// user's uid in the gin context.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing Authorization header"})
			return
		}
		token, ok := tokenFromHeader(auth)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid Authorization header"})
			return
		}

		vt, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := vt.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "failed to parse claims"})
			return
		}

		c.Set(ClaimsKey, claims)
		if uid := uidFromClaims(claims); uid != "" {
			c.Set(UserUIDKey, uid)
		}
		c.Next()
	}
}

func uidFromClaims(claims map[string]interface{}) string {
	user, ok := claims["user"].(map[string]interface{})
	if !ok {
		return ""
	}
	uid, _ := user["uid"].(string)
	return uid
}

// UserUID returns the authenticated user's uid, or "" when the request is anonymous.
func UserUID(c *gin.Context) string {
	return c.GetString(UserUIDKey)
}
