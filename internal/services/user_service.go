// Package services – UserService
//
// This file implements the UserService, which manages platform accounts.
// Accounts are keyed by email and upserted on login; the role field defaults
// to "user" and may only be raised to "admin" by an existing admin (enforced
// here via an explicit capability check, not by route plumbing).
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// UserService provides account-level operations: create-if-absent, upsert,
// lookup, listing, and admin promotion.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Ensure creates an account for email unless one already exists. It returns
// the account and whether it was created by this call. Used by the login
// flow, which posts the profile on every sign-in.
func (s *UserService) Ensure(ctx context.Context, email, name string) (*domain.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, false, ErrMissingField
	}
	if u, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return u, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	u, err := repo.CreateUser(ctx, s.DB, email, name)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// Upsert creates the account when missing, otherwise merges the supplied
// display name and bumps UpdatedAt. The role is never touched here.
func (s *UserService) Upsert(ctx context.Context, email, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrMissingField
	}
	err := repo.UpdateUserName(ctx, s.DB, email, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.CreateUser(ctx, s.DB, email, name)
	}
	if err != nil {
		return nil, err
	}
	return repo.GetUserByEmail(ctx, s.DB, email)
}

// Get returns the account for email, visible to the account owner or an
// admin. The capability check runs before any data access.
func (s *UserService) Get(ctx context.Context, actor auth.Identity, email string) (*domain.User, error) {
	if err := auth.RequireSelfOrAdmin(actor, email); err != nil {
		return nil, err
	}
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// List returns every account, newest first. Admin only.
func (s *UserService) List(ctx context.Context, actor auth.Identity) ([]domain.User, error) {
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return repo.ListUsers(ctx, s.DB)
}

// Promote raises the user identified by id to the admin role. Only an
// existing admin may promote; the operation is irreversible through this
// service.
func (s *UserService) Promote(ctx context.Context, actor auth.Identity, id string) error {
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	err := repo.PromoteUser(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Role resolves the stored role for email; it satisfies auth.RoleResolver so
// the access-control layer reflects promotions immediately.
func (s *UserService) Role(ctx context.Context, email string) (string, error) {
	return repo.RoleByEmail(ctx, s.DB, email)
}
