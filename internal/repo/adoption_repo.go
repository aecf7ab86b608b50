// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AdoptionRequest model.
//
// The one-shot status transition is enforced here at the storage level: the
// UPDATE is predicated on status = 'pending', so two concurrent decisions on
// the same request cannot both succeed.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// CreateRequest inserts a new AdoptionRequest in the pending state with a
// generated UUID and a UTC timestamp.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.AdoptionRequest) (*domain.AdoptionRequest, error) {
	now := time.Now().UTC()
	r.ID = uuid.NewString()
	r.RequesterEmail = strings.ToLower(strings.TrimSpace(r.RequesterEmail))
	r.Status = domain.StatusPending
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetRequest fetches a single request by id, or ErrNotFound if missing.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// DecideRequest moves a pending request to the target status. The predicate
// on the current status makes the transition one-shot: when no row is
// affected the request is either missing or already decided, and the caller
// disambiguates via GetRequest. Returns ErrNotFound in that case.
func DecideRequest(ctx context.Context, db *gorm.DB, id, target string) error {
	res := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{"status": target, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRequestsByPets returns all requests whose pet id is in petIDs, ordered
// by request time descending. An empty petIDs yields an empty slice without
// touching the store.
func ListRequestsByPets(ctx context.Context, db *gorm.DB, petIDs []string) ([]domain.AdoptionRequest, error) {
	if len(petIDs) == 0 {
		return []domain.AdoptionRequest{}, nil
	}
	var out []domain.AdoptionRequest
	err := db.WithContext(ctx).
		Where("pet_id IN ?", petIDs).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListRequestsByRequester returns all requests filed by email, newest first.
func ListRequestsByRequester(ctx context.Context, db *gorm.DB, email string) ([]domain.AdoptionRequest, error) {
	var out []domain.AdoptionRequest
	err := db.WithContext(ctx).
		Where("requester_email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
