// Package services – PaymentService
//
// This file implements the PaymentService, which guards the append-only
// donation ledger. Inserts validate the amount and resolve the campaign
// reference before anything is written; the upstream gateway has already
// authorized the charge by the time this service runs. There is no update
// path, and deletion is an admin-only correction.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// CampaignSum is one row of a grouped ledger aggregation: canonical campaign
// id, display title when known, and the summed amount.
type CampaignSum struct {
	CampaignID    string  `json:"campaign_id"`
	CampaignTitle string  `json:"campaign_title"`
	Total         float64 `json:"total"`
}

// PaymentService implements the use-cases around the payment ledger.
type PaymentService struct {
	// DB is the database handle used for all ledger operations.
	DB *gorm.DB

	// IdempotencyTTL bounds how long a given Idempotency-Key replays the
	// original insert instead of appending a duplicate. Zero disables the
	// replay window.
	IdempotencyTTL time.Duration
}

// Insert appends a donation to the ledger.
//
// Validation, all before any write:
//   - Amount must be strictly positive; otherwise ErrInvalidAmount and
//     nothing is persisted.
//   - The campaign reference must normalize to an existing campaign;
//     otherwise ErrCampaignNotFound. The store enforces no foreign keys
//     here, so referential integrity is this component's job.
//   - The campaign must be accepting donations; otherwise ErrCampaignPaused.
//
// The stored record snapshots the campaign title and image so donation
// history survives later campaign edits or deletion. When idemKey is
// non-empty a retried insert with the same (donator, campaign, key) within
// the TTL returns the originally inserted record.
func (s *PaymentService) Insert(ctx context.Context, rec domain.PaymentRecord, idemKey string) (*domain.PaymentRecord, error) {
	if rec.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	rec.DonatorEmail = strings.ToLower(strings.TrimSpace(rec.DonatorEmail))
	if rec.DonatorEmail == "" || strings.TrimSpace(rec.CampaignID) == "" {
		return nil, ErrMissingField
	}

	campaignID := domain.NormalizeRef(rec.CampaignID)
	c, err := repo.GetCampaign(ctx, s.DB, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if c.Paused {
		return nil, ErrCampaignPaused
	}
	if rec.CampaignTitle == "" {
		rec.CampaignTitle = c.Title
	}
	if rec.CampaignImageURL == "" {
		rec.CampaignImageURL = c.ImageURL
	}

	if idemKey != "" && s.IdempotencyTTL > 0 {
		if prior, err := repo.GetIdempotency(ctx, s.DB, rec.DonatorEmail, campaignID, idemKey, time.Now().UTC()); err == nil {
			orig, gerr := repo.GetPayment(ctx, s.DB, prior.PaymentID)
			if gerr == nil {
				return orig, nil
			}
			if !errors.Is(gerr, gorm.ErrRecordNotFound) {
				return nil, gerr
			}
			// The recorded payment was since deleted by an admin. The key
			// points at nothing, so treat it as a miss and insert fresh.
			idemKey = ""
		}
	}

	created, err := repo.CreatePayment(ctx, s.DB, &rec)
	if err != nil {
		return nil, err
	}

	if idemKey != "" && s.IdempotencyTTL > 0 {
		if _, err := repo.CreateIdempotency(ctx, s.DB, rec.DonatorEmail, campaignID, idemKey, created.ID, 201, s.IdempotencyTTL); err != nil && errors.Is(err, repo.ErrDuplicate) {
			// Lost a race with a concurrent retry; serve its record. If that
			// record is gone the row we just inserted stands on its own.
			if prior, perr := repo.GetIdempotency(ctx, s.DB, rec.DonatorEmail, campaignID, idemKey, time.Now().UTC()); perr == nil {
				if orig, gerr := repo.GetPayment(ctx, s.DB, prior.PaymentID); gerr == nil {
					return orig, nil
				}
			}
		}
	}
	return created, nil
}

// List returns ledger entries, newest first. An empty donatorEmail returns
// the whole ledger, which is admin-only; a self-scoped list requires the
// caller to be the donator or an admin.
func (s *PaymentService) List(ctx context.Context, actor auth.Identity, donatorEmail string) ([]domain.PaymentRecord, error) {
	if strings.TrimSpace(donatorEmail) == "" {
		if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
			return nil, err
		}
	} else if err := auth.RequireSelfOrAdmin(actor, donatorEmail); err != nil {
		return nil, err
	}
	return repo.ListPayments(ctx, s.DB, donatorEmail)
}

// AggregateByCampaign returns grouped donation sums per campaign, largest
// first. When donatorEmail is non-empty only that donator's ledger rows
// contribute, yielding their per-campaign giving totals.
func (s *PaymentService) AggregateByCampaign(ctx context.Context, donatorEmail string) ([]CampaignSum, error) {
	recs, err := repo.ListPayments(ctx, s.DB, donatorEmail)
	if err != nil {
		return nil, err
	}
	totals := map[string]*CampaignSum{}
	order := []string{}
	for _, r := range recs {
		id := domain.NormalizeRef(r.CampaignID)
		if id == "" {
			continue
		}
		cs, ok := totals[id]
		if !ok {
			cs = &CampaignSum{CampaignID: id, CampaignTitle: r.CampaignTitle}
			totals[id] = cs
			order = append(order, id)
		}
		cs.Total += r.Amount
	}
	out := make([]CampaignSum, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

// Delete removes a ledger entry as an administrative correction. The
// original system left this route open; it is gated behind the admin role
// here on purpose.
func (s *PaymentService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	err := repo.DeletePayment(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaymentNotFound
	}
	return err
}
