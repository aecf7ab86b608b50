// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate/statistics queries behind
// the dashboard and reporting endpoints, plus lightweight stats used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// GroupCount is one row of a grouped count (e.g. pets per category).
type GroupCount struct {
	Key   string `gorm:"column:grp"`
	Count int64  `gorm:"column:cnt"`
}

// CountUsers returns the total number of user accounts.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

// CountAllPets returns the total number of pet listings. When ownerEmail is
// non-empty the count is scoped to that owner.
func CountAllPets(ctx context.Context, db *gorm.DB, ownerEmail string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Pet{})
	if e := strings.TrimSpace(ownerEmail); e != "" {
		q = q.Where("owner_email = ?", strings.ToLower(e))
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountAllCampaigns returns the total number of campaigns, optionally scoped
// to a creator email.
func CountAllCampaigns(ctx context.Context, db *gorm.DB, createdBy string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.DonationCampaign{})
	if e := strings.TrimSpace(createdBy); e != "" {
		q = q.Where("created_by = ?", strings.ToLower(e))
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// SumDonations returns the total donated amount across the whole ledger, or
// for a single donator when donatorEmail is non-empty.
func SumDonations(ctx context.Context, db *gorm.DB, donatorEmail string) (float64, error) {
	q := db.WithContext(ctx).Model(&domain.PaymentRecord{})
	if e := strings.TrimSpace(donatorEmail); e != "" {
		q = q.Where("donator_email = ?", strings.ToLower(e))
	}
	var row struct{ Total float64 }
	err := q.Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error
	return row.Total, err
}

// PetCountsByCategory returns listing counts grouped by category, largest
// group first.
func PetCountsByCategory(ctx context.Context, db *gorm.DB) ([]GroupCount, error) {
	var out []GroupCount
	err := db.WithContext(ctx).
		Model(&domain.Pet{}).
		Select("category AS grp, COUNT(*) AS cnt").
		Group("category").
		Order("cnt DESC").
		Scan(&out).Error
	return out, err
}

// RequestCountsByStatus returns adoption-request counts grouped by workflow
// status.
func RequestCountsByStatus(ctx context.Context, db *gorm.DB) ([]GroupCount, error) {
	var out []GroupCount
	err := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Select("status AS grp, COUNT(*) AS cnt").
		Group("status").
		Scan(&out).Error
	return out, err
}

// CampaignsStats returns aggregate metadata for the campaigns table: the
// total number of rows and the maximum UpdatedAt timestamp among them. Used
// to derive a weak ETag for the campaign listing. When there are no
// campaigns, the returned count is 0 and maxUpdatedAt is nil.
func CampaignsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.DonationCampaign{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
