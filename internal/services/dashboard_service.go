// Package services – DashboardService
//
// This file implements the DashboardService, a pure read-side composition
// over the other components. It never mutates anything; the shape of the
// overview depends on the caller's role, resolved by access control before
// any query runs.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// AdminOverview is the global dashboard served to admin callers.
type AdminOverview struct {
	Users          int64   `json:"users"`
	Pets           int64   `json:"pets"`
	Campaigns      int64   `json:"campaigns"`
	TotalDonations float64 `json:"total_donations"`
}

// UserOverview is the self-scoped dashboard served to regular callers.
type UserOverview struct {
	MyPets          int64   `json:"my_pets"`
	MyCampaigns     int64   `json:"my_campaigns"`
	MyDonationTotal float64 `json:"my_donation_total"`
}

// Overview is the role-shaped dashboard payload: exactly one of Admin or
// User is populated.
type Overview struct {
	Role  string         `json:"role"`
	Admin *AdminOverview `json:"admin,omitempty"`
	User  *UserOverview  `json:"user,omitempty"`
}

// CategoryCount is one row of the pets-by-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DashboardService composes reporting reads from the catalog, the campaign
// store, the ledger, and the adoption workflow.
type DashboardService struct {
	// DB is the database handle used for all reporting reads.
	DB *gorm.DB

	// Payments serves the grouped donation aggregations.
	Payments *PaymentService
}

// Overview returns global counts for admins and self-scoped counts for
// everyone else.
func (s *DashboardService) Overview(ctx context.Context, actor auth.Identity) (*Overview, error) {
	if actor.IsAdmin() {
		users, err := repo.CountUsers(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		pets, err := repo.CountAllPets(ctx, s.DB, "")
		if err != nil {
			return nil, err
		}
		campaigns, err := repo.CountAllCampaigns(ctx, s.DB, "")
		if err != nil {
			return nil, err
		}
		total, err := repo.SumDonations(ctx, s.DB, "")
		if err != nil {
			return nil, err
		}
		return &Overview{
			Role: domain.RoleAdmin,
			Admin: &AdminOverview{
				Users:          users,
				Pets:           pets,
				Campaigns:      campaigns,
				TotalDonations: total,
			},
		}, nil
	}

	pets, err := repo.CountAllPets(ctx, s.DB, actor.Email)
	if err != nil {
		return nil, err
	}
	campaigns, err := repo.CountAllCampaigns(ctx, s.DB, actor.Email)
	if err != nil {
		return nil, err
	}
	total, err := repo.SumDonations(ctx, s.DB, actor.Email)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Role: domain.RoleUser,
		User: &UserOverview{
			MyPets:          pets,
			MyCampaigns:     campaigns,
			MyDonationTotal: total,
		},
	}, nil
}

// PetsByCategory returns listing counts grouped by category, largest first.
func (s *DashboardService) PetsByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := repo.PetCountsByCategory(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryCount{Category: r.Key, Count: r.Count})
	}
	return out, nil
}

// MyDonationsByCampaign returns the caller's giving grouped per campaign,
// largest total first.
func (s *DashboardService) MyDonationsByCampaign(ctx context.Context, actor auth.Identity) ([]CampaignSum, error) {
	return s.Payments.AggregateByCampaign(ctx, actor.Email)
}

// MyDonationHistory returns the caller's full donation history, newest
// first.
func (s *DashboardService) MyDonationHistory(ctx context.Context, actor auth.Identity) ([]domain.PaymentRecord, error) {
	return repo.ListPayments(ctx, s.DB, actor.Email)
}
