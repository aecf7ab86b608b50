package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
)

var mwSecret = []byte("middleware-test-secret")

func testIdentity(email string) auth.Identity {
	return auth.Identity{Email: email, Role: domain.RoleUser}
}

func signTestToken(t *testing.T, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(mwSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authStack(t *testing.T, requireAuth bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(&auth.Authenticator{Secret: mwSecret}))
	if requireAuth {
		r.Use(RequireAuth())
	}
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.Email)
	})
	return r
}

func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	r := authStack(t, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Fatalf("anonymous request: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestAuthenticate_ValidCredential(t *testing.T) {
	r := authStack(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "Ada@X.Y"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ada@x.y" {
		t.Fatalf("valid credential: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestAuthenticate_InvalidCredentialRejected(t *testing.T) {
	r := authStack(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage credential: expected 401, got %d", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	r := authStack(t, true)

	// No credential at all.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing credential: expected 401, got %d", w.Code)
	}

	// Valid credential passes through to the handler.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "ada@x.y"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ada@x.y" {
		t.Fatalf("authenticated request: code=%d body=%q", w.Code, w.Body.String())
	}
}
