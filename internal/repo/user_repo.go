// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts a new User row with a UUID primary key, the default
// "user" role, and UTC timestamps. Emails are stored lowercase.
func CreateUser(ctx context.Context, db *gorm.DB, email, name string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      name,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by email (case-insensitive). If the record
// does not exist, it returns ErrNotFound.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time descending.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// UpdateUserName sets the display name for the user identified by email and
// bumps UpdatedAt. Returns ErrNotFound when no row matches.
func UpdateUserName(ctx context.Context, db *gorm.DB, email, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PromoteUser sets the role of the user identified by id to admin.
// Returns ErrNotFound when no row matches.
func PromoteUser(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": domain.RoleAdmin, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RoleByEmail returns the stored role for email, or "" when the user does
// not exist. Used by the access-control layer to resolve roles per call.
func RoleByEmail(ctx context.Context, db *gorm.DB, email string) (string, error) {
	var row struct{ Role string }
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Select("role").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return "", err
	}
	return row.Role, nil
}
