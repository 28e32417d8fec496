package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workforce/internal/user"
)

// CookieName carries the session token between requests.
const CookieName = "token"

const claimsKey = "claims"

// tokenFrom extracts the session token from the cookie or, as a fallback,
// a bearer Authorization header.
func tokenFrom(c *gin.Context) string {
	if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
		return tok
	}
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

// Required enforces a valid session token and stores the claims on the
// context.
func Required(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFrom(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, err := Parse(tok, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Optional parses the session token when present but lets unauthenticated
// requests through; handlers decide what an anonymous caller sees.
func Optional(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := tokenFrom(c); tok != "" {
			if claims, err := Parse(tok, signingKey, issuer); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// AdminOnly rejects non-admin identities. Must run after Required.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok || claims.Role != user.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// FromContext returns the claims stored by Required/Optional.
func FromContext(c *gin.Context) (Claims, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := val.(Claims)
	return claims, ok
}
