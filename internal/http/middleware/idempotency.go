// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for ledger inserts. Clients
// convey an Idempotency-Key header on POST /payments; the middleware
// validates the header shape and stashes the normalized key in the request
// context. The actual replay decision lives in the payment service, which
// knows the (donator, campaign) scope once the body is parsed; the
// transport layer only guarantees a well-formed key.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations. The value is expected to
// be stable for a given semantic donation so that retries can be safely
// deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// ctxKeyIdemKey is the context key under which the validated key is stashed.
const ctxKeyIdemKey = "idem.key"

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates
// presence. Handlers should prefer this over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header (if present) and
// stashes it in the request context. Requests without the header pass
// through untouched; requests with a malformed key are rejected with 400
// before any handler runs.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		// RFC-7230-ish token + common safe chars.
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
