// Package auth implements access control for the pet-adoption backend. It
// verifies opaque bearer credentials (JWT, HS256) into an Identity and
// exposes the capability checks consumed by every mutating operation.
//
// The checks are deliberately composable pure functions returning explicit
// errors, invoked by handlers and services rather than relying on ambient
// request mutation. No session state is retained: every call re-verifies
// the credential.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// Sentinel errors produced by the access-control layer. Handlers map them to
// 401 and 403 responses respectively.
var (
	// ErrUnauthenticated indicates a missing, malformed, invalid, or
	// expired credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller is authenticated but lacks the role
	// or ownership the operation requires.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the decoded caller principal. Role is always one of
// domain.RoleUser or domain.RoleAdmin.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == domain.RoleAdmin }

// claims is the JWT claim set issued by the credential subsystem. Only the
// email is trusted from the token; the role is re-resolved from the user
// store on every call so a promotion or demotion takes effect immediately.
type claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RoleResolver returns the current role for an email, typically backed by
// the users table. Returning an empty role (or ErrUnknownUser-style errors)
// falls back to the role claim embedded in the token, then to RoleUser.
type RoleResolver func(ctx context.Context, email string) (string, error)

// Authenticator verifies bearer credentials. Secret is the HS256 signing key
// shared with the credential-issuing subsystem (out of scope here). Roles is
// optional; when nil the token's role claim is used as-is.
type Authenticator struct {
	Secret []byte
	Roles  RoleResolver
}

// Authenticate decodes a bearer credential into an Identity.
//
// The credential may include the "Bearer " scheme prefix; matching is
// case-insensitive. It fails with ErrUnauthenticated when the credential is
// empty, unparseable, signed with an unexpected method, or expired.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (Identity, error) {
	raw := strings.TrimSpace(credential)
	if l := strings.ToLower(raw); strings.HasPrefix(l, "bearer ") {
		raw = strings.TrimSpace(raw[len("bearer "):])
	}
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	var cl claims
	tok, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return a.Secret, nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrUnauthenticated
	}
	email := strings.ToLower(strings.TrimSpace(cl.Email))
	if email == "" {
		return Identity{}, ErrUnauthenticated
	}

	role := cl.Role
	if a.Roles != nil {
		if r, err := a.Roles(ctx, email); err == nil && r != "" {
			role = r
		}
	}
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	return Identity{Email: email, Role: role}, nil
}

// RequireRole passes when the identity holds exactly the required role.
// Admins implicitly satisfy a RoleUser requirement.
func RequireRole(id Identity, role string) error {
	if id.Role == role {
		return nil
	}
	if role == domain.RoleUser && id.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// RequireSelfOrAdmin passes when the identity owns targetEmail or holds the
// admin role. Email comparison is case-insensitive.
func RequireSelfOrAdmin(id Identity, targetEmail string) error {
	if id.IsAdmin() {
		return nil
	}
	if strings.EqualFold(id.Email, strings.TrimSpace(targetEmail)) {
		return nil
	}
	return ErrForbidden
}
