// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PaymentRecord ledger.
//
// The ledger is append-only: there is deliberately no update function, and
// deletion exists only as an administrative correction. Aggregation over
// campaign references happens in the service layer because stored references
// may carry a legacy encoding (see domain.NormalizeRef); the repository only
// serves the raw (reference, amount) rows.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// CampaignAmount is one raw ledger row projected for aggregation: the
// campaign reference exactly as stored, and the donated amount.
type CampaignAmount struct {
	CampaignID string
	Amount     float64
}

// CreatePayment appends a record to the ledger with a generated UUID and a
// UTC timestamp. Amount validation (> 0) is a service-layer concern and must
// have happened before this call.
func CreatePayment(ctx context.Context, db *gorm.DB, rec *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	rec.ID = uuid.NewString()
	rec.DonatorEmail = strings.ToLower(strings.TrimSpace(rec.DonatorEmail))
	rec.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// GetPayment fetches a single ledger entry by id; a missing row surfaces
// gorm.ErrRecordNotFound.
func GetPayment(ctx context.Context, db *gorm.DB, id string) (*domain.PaymentRecord, error) {
	var rec domain.PaymentRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPayments returns ledger entries ordered by creation time descending.
// When donatorEmail is non-empty the result is scoped to that donator.
func ListPayments(ctx context.Context, db *gorm.DB, donatorEmail string) ([]domain.PaymentRecord, error) {
	q := db.WithContext(ctx).Order("created_at desc")
	if e := strings.TrimSpace(donatorEmail); e != "" {
		q = q.Where("donator_email = ?", strings.ToLower(e))
	}
	var out []domain.PaymentRecord
	err := q.Find(&out).Error
	return out, err
}

// ListCampaignRefs returns every (campaign reference, amount) pair in the
// ledger. When donatorEmail is non-empty only that donator's rows are
// returned. References are raw; callers normalize before grouping.
func ListCampaignRefs(ctx context.Context, db *gorm.DB, donatorEmail string) ([]CampaignAmount, error) {
	q := db.WithContext(ctx).Model(&domain.PaymentRecord{}).Select("campaign_id, amount")
	if e := strings.TrimSpace(donatorEmail); e != "" {
		q = q.Where("donator_email = ?", strings.ToLower(e))
	}
	var out []CampaignAmount
	err := q.Scan(&out).Error
	return out, err
}

// DeletePayment hard-deletes a ledger entry. Administrative correction only;
// not part of the normal donation flow. Returns ErrNotFound when no row
// matches.
func DeletePayment(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.PaymentRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
