// Package services – CampaignService
//
// This file implements the CampaignService, which owns donation campaigns
// and the derived funding totals. A campaign's current amount is never
// stored: every read joins the campaign against the payment ledger,
// normalizing legacy reference encodings on both sides, then grouping and
// summing. Recomputing on read trades a join per request for freedom from
// the lost-update races a stored running counter would invite.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// CampaignView is a campaign augmented with its derived funding total.
type CampaignView struct {
	domain.DonationCampaign
	CurrentDonationAmount float64 `json:"current_donation_amount"`
}

// CampaignUpdate is the allow-list of mutable campaign fields; only non-nil
// fields are merged.
type CampaignUpdate struct {
	Title       *string
	ImageURL    *string
	Description *string
	GoalAmount  *float64
	Urgency     *int
}

// CampaignPage is one page of campaigns. Unlike the pet catalog the total
// here is treated as approximate: the listing tolerates the count and page
// queries observing different states under concurrent writes.
type CampaignPage struct {
	Items    []domain.DonationCampaign
	NextPage int
	HasMore  bool
}

// Donator is the projected view of one ledger entry exposed to a campaign's
// donator listing: contact fields and amount only.
type Donator struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// CampaignService provides campaign lifecycle operations and the funding
// aggregation used across reads and recommendations.
type CampaignService struct {
	// DB is the database handle used for all campaign operations.
	DB *gorm.DB
}

// fundingTotals folds the raw ledger rows into a map keyed by canonical
// campaign id. This is the two-step join: normalize the stored reference,
// then group-and-sum.
func fundingTotals(rows []repo.CampaignAmount) map[string]float64 {
	totals := make(map[string]float64, len(rows))
	for _, r := range rows {
		id := domain.NormalizeRef(r.CampaignID)
		if id == "" {
			continue
		}
		totals[id] += r.Amount
	}
	return totals
}

// Create inserts a new campaign created by the given email. The title is
// required and the goal must be positive.
func (s *CampaignService) Create(ctx context.Context, createdBy string, c domain.DonationCampaign) (*domain.DonationCampaign, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" || strings.TrimSpace(createdBy) == "" {
		return nil, ErrMissingField
	}
	if c.GoalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	c.CreatedBy = createdBy
	return repo.CreateCampaign(ctx, s.DB, &c)
}

// List returns one page of campaigns, newest first. hasMore is computed
// against the total campaign count.
func (s *CampaignService) List(ctx context.Context, page, pageSize int) (*CampaignPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	items, err := repo.ListCampaignsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := repo.CountCampaigns(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &CampaignPage{
		Items:    items,
		NextPage: page + 1,
		HasMore:  int64(page*pageSize) < total,
	}, nil
}

// GetByID returns the campaign augmented with its current funding total,
// recomputed from the ledger on this read.
func (s *CampaignService) GetByID(ctx context.Context, id string) (*CampaignView, error) {
	c, err := repo.GetCampaign(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	rows, err := repo.ListCampaignRefs(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	return &CampaignView{
		DonationCampaign:      *c,
		CurrentDonationAmount: fundingTotals(rows)[c.ID],
	}, nil
}

// ListByOwner returns all campaigns created by email, each augmented with
// its funding total. One ledger pass serves every campaign in the result.
func (s *CampaignService) ListByOwner(ctx context.Context, email string) ([]CampaignView, error) {
	cs, err := repo.ListCampaignsByCreator(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListCampaignRefs(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	totals := fundingTotals(rows)
	out := make([]CampaignView, 0, len(cs))
	for _, c := range cs {
		out = append(out, CampaignView{DonationCampaign: c, CurrentDonationAmount: totals[c.ID]})
	}
	return out, nil
}

// Update merges the non-nil fields of upd into a campaign. Only the creator
// or an admin may edit.
func (s *CampaignService) Update(ctx context.Context, actor auth.Identity, id string, upd CampaignUpdate) (*domain.DonationCampaign, error) {
	c, err := repo.GetCampaign(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if err := auth.RequireSelfOrAdmin(actor, c.CreatedBy); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if upd.Title != nil {
		fields["title"] = strings.TrimSpace(*upd.Title)
	}
	if upd.ImageURL != nil {
		fields["image_url"] = *upd.ImageURL
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.GoalAmount != nil {
		if *upd.GoalAmount <= 0 {
			return nil, ErrInvalidAmount
		}
		fields["goal_amount"] = *upd.GoalAmount
	}
	if upd.Urgency != nil {
		fields["urgency"] = *upd.Urgency
	}
	if err := repo.UpdateCampaignFields(ctx, s.DB, id, fields); err != nil {
		return nil, err
	}
	return repo.GetCampaign(ctx, s.DB, id)
}

// Pause toggles whether the campaign accepts new donations. Creator or
// admin only.
func (s *CampaignService) Pause(ctx context.Context, actor auth.Identity, id string, paused bool) error {
	c, err := repo.GetCampaign(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	if err := auth.RequireSelfOrAdmin(actor, c.CreatedBy); err != nil {
		return err
	}
	return repo.SetCampaignPaused(ctx, s.DB, id, paused)
}

// Delete hard-deletes a campaign. Creator or admin only. Ledger entries are
// retained.
func (s *CampaignService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	c, err := repo.GetCampaign(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	if err := auth.RequireSelfOrAdmin(actor, c.CreatedBy); err != nil {
		return err
	}
	return repo.DeleteCampaign(ctx, s.DB, id)
}

// Recommend returns up to limit active campaigns, most urgent first, least
// funded winning ties, newest breaking remaining ties. excludeID removes the
// campaign the caller is already viewing; limit defaults to 3.
func (s *CampaignService) Recommend(ctx context.Context, excludeID string, limit int) ([]CampaignView, error) {
	if limit <= 0 {
		limit = 3
	}
	cs, err := repo.ListActiveCampaigns(ctx, s.DB, excludeID)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListCampaignRefs(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	totals := fundingTotals(rows)

	views := make([]CampaignView, 0, len(cs))
	for _, c := range cs {
		views = append(views, CampaignView{DonationCampaign: c, CurrentDonationAmount: totals[c.ID]})
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Urgency != views[j].Urgency {
			return views[i].Urgency > views[j].Urgency
		}
		if views[i].CurrentDonationAmount != views[j].CurrentDonationAmount {
			return views[i].CurrentDonationAmount < views[j].CurrentDonationAmount
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// Donators returns the projected donator list (email, name, amount) for a
// campaign, newest donation first. Legacy-encoded ledger references are
// matched the same way aggregation matches them.
func (s *CampaignService) Donators(ctx context.Context, id string) ([]Donator, error) {
	if _, err := repo.GetCampaign(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	recs, err := repo.ListPayments(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	out := []Donator{}
	for _, r := range recs {
		if domain.NormalizeRef(r.CampaignID) == id {
			out = append(out, Donator{Email: r.DonatorEmail, Name: r.DonatorName, Amount: r.Amount})
		}
	}
	return out, nil
}
