// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DonationCampaign model. Funding totals are not stored on campaigns; the
// service layer derives them from the payment ledger on every read.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// CreateCampaign inserts a new DonationCampaign row with a generated UUID
// and UTC timestamps. Paused defaults to false (accepting donations).
func CreateCampaign(ctx context.Context, db *gorm.DB, c *domain.DonationCampaign) (*domain.DonationCampaign, error) {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedBy = strings.ToLower(strings.TrimSpace(c.CreatedBy))
	c.Paused = false
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetCampaign fetches a single campaign by id; a missing row surfaces
// gorm.ErrRecordNotFound.
func GetCampaign(ctx context.Context, db *gorm.DB, id string) (*domain.DonationCampaign, error) {
	var c domain.DonationCampaign
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCampaigns returns the total number of campaigns. The listing treats
// this as an acceptable approximation of the matching total under
// concurrent writes.
func CountCampaigns(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.DonationCampaign{}).Count(&total).Error
	return total, err
}

// ListCampaignsPage returns a page of campaigns ordered by creation time
// descending.
func ListCampaignsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.DonationCampaign, error) {
	var out []domain.DonationCampaign
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListCampaignsByCreator returns all campaigns created by email, newest
// first.
func ListCampaignsByCreator(ctx context.Context, db *gorm.DB, email string) ([]domain.DonationCampaign, error) {
	var out []domain.DonationCampaign
	err := db.WithContext(ctx).
		Where("created_by = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListActiveCampaigns returns unpaused campaigns, optionally excluding one
// id. Recommendation ranking happens in the service layer because it depends
// on derived funding totals.
func ListActiveCampaigns(ctx context.Context, db *gorm.DB, excludeID string) ([]domain.DonationCampaign, error) {
	q := db.WithContext(ctx).Where("paused = ?", false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var out []domain.DonationCampaign
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

// UpdateCampaignFields applies a partial-field merge to the campaign
// identified by id. The fields map must already be restricted to the mutable
// allow-list. Returns ErrNotFound when no row matches.
func UpdateCampaignFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.DonationCampaign{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCampaignPaused toggles whether the campaign accepts new donations.
// Returns ErrNotFound when no row matches.
func SetCampaignPaused(ctx context.Context, db *gorm.DB, id string, paused bool) error {
	res := db.WithContext(ctx).
		Model(&domain.DonationCampaign{}).
		Where("id = ?", id).
		Updates(map[string]any{"paused": paused, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCampaign hard-deletes the campaign identified by id. Ledger entries
// referencing it are kept: the ledger is append-only and history must
// survive campaign removal. Returns ErrNotFound when no row matches.
func DeleteCampaign(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.DonationCampaign{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
