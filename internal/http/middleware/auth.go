// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file wires access control into the transport: it extracts the bearer
// credential from the Authorization header, verifies it through the injected
// Authenticator, and stashes the resulting Identity in the Gin context for
// handlers to consume. Route-level authorization (role and ownership checks)
// stays in the services; this middleware only establishes who is calling.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petadopt/go-adopt-backend/internal/auth"
)

// identityKey is the Gin context key under which the caller Identity is stored.
const identityKey = "identity"

// IdentityFrom returns the authenticated Identity established by
// Authenticate or RequireAuth. The second return value reports presence.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// Authenticate verifies the Authorization header when present and stores the
// Identity in the context. Requests without a credential pass through
// anonymously; requests with an invalid credential are rejected with 401.
// Use this on route groups that mix open and authenticated endpoints.
func Authenticate(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		id, err := a.Authenticate(c.Request.Context(), header)
		if err != nil {
			unauthenticated(c)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAuth rejects requests that did not establish an Identity. Mount it
// after Authenticate on groups where anonymous access is not allowed.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			unauthenticated(c)
			return
		}
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    "missing or invalid credential",
	})
}
