// Handler wiring.
//
// This file defines the service contracts the HTTP layer consumes and the
// Handlers aggregate that binds them. Handlers are transport-thin: they
// validate input, resolve the caller identity established by upstream
// middleware, call application services, and translate results into HTTP
// responses. Authorization decisions live in the services; handlers only
// carry the caller's Identity to them.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/http/middleware"
	"github.com/petadopt/go-adopt-backend/internal/repo"
	"github.com/petadopt/go-adopt-backend/internal/services"
	"github.com/petadopt/go-adopt-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService defines account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Ensure creates the account when absent and reports whether it did.
	Ensure(ctx context.Context, email, name string) (*domain.User, bool, error)
	// Upsert creates or refreshes the account profile.
	Upsert(ctx context.Context, email, name string) (*domain.User, error)
	// Get returns one account, visible to its owner or an admin.
	Get(ctx context.Context, actor auth.Identity, email string) (*domain.User, error)
	// List returns every account. Admin only.
	List(ctx context.Context, actor auth.Identity) ([]domain.User, error)
	// Promote raises the account identified by id to admin. Admin only.
	Promote(ctx context.Context, actor auth.Identity, id string) error
}

// PetService defines pet catalog operations consumed by HTTP handlers.
type PetService interface {
	// Create inserts a listing owned by ownerEmail.
	Create(ctx context.Context, ownerEmail string, p domain.Pet) (*domain.Pet, error)
	// List returns one filtered page of the catalog with an exact total.
	List(ctx context.Context, f repo.PetFilter, page, pageSize int) (*services.PetPage, error)
	// ListByOwner returns all listings owned by ownerEmail.
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Pet, error)
	// Get fetches one listing.
	Get(ctx context.Context, id string) (*domain.Pet, error)
	// Update applies an allow-listed partial update.
	Update(ctx context.Context, id string, upd services.PetUpdate) (*domain.Pet, error)
	// SetAdopted flips the adopted flag. Owner or admin.
	SetAdopted(ctx context.Context, actor auth.Identity, id string, adopted bool) error
	// Delete removes a listing. Admin only.
	Delete(ctx context.Context, actor auth.Identity, id string) error
	// AdminList returns the unfiltered catalog. Admin only.
	AdminList(ctx context.Context, actor auth.Identity) ([]domain.Pet, error)
}

// CampaignService defines donation-campaign operations consumed by HTTP
// handlers.
type CampaignService interface {
	// Create inserts a campaign created by the given email.
	Create(ctx context.Context, createdBy string, c domain.DonationCampaign) (*domain.DonationCampaign, error)
	// List returns one page of campaigns.
	List(ctx context.Context, page, pageSize int) (*services.CampaignPage, error)
	// GetByID returns a campaign with its derived funding total.
	GetByID(ctx context.Context, id string) (*services.CampaignView, error)
	// ListByOwner returns the creator's campaigns with funding totals.
	ListByOwner(ctx context.Context, email string) ([]services.CampaignView, error)
	// Update applies an allow-listed partial update. Creator or admin.
	Update(ctx context.Context, actor auth.Identity, id string, upd services.CampaignUpdate) (*domain.DonationCampaign, error)
	// Pause toggles whether the campaign accepts donations. Creator or admin.
	Pause(ctx context.Context, actor auth.Identity, id string, paused bool) error
	// Delete removes a campaign. Creator or admin.
	Delete(ctx context.Context, actor auth.Identity, id string) error
	// Recommend ranks active campaigns by urgency, funding gap, and recency.
	Recommend(ctx context.Context, excludeID string, limit int) ([]services.CampaignView, error)
	// Donators projects a campaign's ledger entries to contact and amount.
	Donators(ctx context.Context, id string) ([]services.Donator, error)
}

// PaymentService defines donation-ledger operations consumed by HTTP
// handlers.
type PaymentService interface {
	// Insert appends a validated donation, with optional idempotent replay.
	Insert(ctx context.Context, rec domain.PaymentRecord, idemKey string) (*domain.PaymentRecord, error)
	// List returns ledger entries, whole-ledger when donatorEmail is empty.
	List(ctx context.Context, actor auth.Identity, donatorEmail string) ([]domain.PaymentRecord, error)
	// Delete removes one entry as an administrative correction.
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

// AdoptionService defines adoption-workflow operations consumed by HTTP
// handlers.
type AdoptionService interface {
	// Create files a pending request for a pet.
	Create(ctx context.Context, r domain.AdoptionRequest) (*domain.AdoptionRequest, error)
	// Transition decides a pending request exactly once.
	Transition(ctx context.Context, actor auth.Identity, id, target string) error
	// ListForOwner returns requests against the owner's pets.
	ListForOwner(ctx context.Context, ownerEmail string) ([]domain.AdoptionRequest, error)
	// ListForRequester returns requests filed by email.
	ListForRequester(ctx context.Context, email string) ([]domain.AdoptionRequest, error)
	// Summary returns request counts per workflow state.
	Summary(ctx context.Context) (*services.StatusSummary, error)
}

// DashboardService defines the read-side reporting operations consumed by
// HTTP handlers.
type DashboardService interface {
	// Overview returns the role-shaped dashboard payload.
	Overview(ctx context.Context, actor auth.Identity) (*services.Overview, error)
	// PetsByCategory returns listing counts grouped by category.
	PetsByCategory(ctx context.Context) ([]services.CategoryCount, error)
	// MyDonationsByCampaign returns the caller's giving grouped per campaign.
	MyDonationsByCampaign(ctx context.Context, actor auth.Identity) ([]services.CampaignSum, error)
	// MyDonationHistory returns the caller's full donation history.
	MyDonationHistory(ctx context.Context, actor auth.Identity) ([]domain.PaymentRecord, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for users, pets, campaigns, payments,
// adoption requests, and the dashboard. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	userSvc     UserService
	petSvc      PetService
	campaignSvc CampaignService
	paymentSvc  PaymentService
	adoptionSvc AdoptionService
	dashSvc     DashboardService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(userSvc UserService, petSvc PetService, campaignSvc CampaignService, paymentSvc PaymentService, adoptionSvc AdoptionService, dashSvc DashboardService) *Handlers {
	return &Handlers{
		userSvc:     userSvc,
		petSvc:      petSvc,
		campaignSvc: campaignSvc,
		paymentSvc:  paymentSvc,
		adoptionSvc: adoptionSvc,
		dashSvc:     dashSvc,
	}
}

//
// Helpers
//

// caller extracts the authenticated Identity established by upstream
// middleware. When absent it fails the request with 401 and returns ok=false;
// routes that reach handlers requiring a caller are mounted behind
// RequireAuth, so the failure path is a safety net.
func caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid credential")
		return auth.Identity{}, false
	}
	return id, true
}

// Pagination carries pagination metadata for list responses. NextPage is
// only present when another page exists.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
	NextPage int   `json:"next_page,omitempty"`
	HasMore  bool  `json:"has_more"`
}

// clampPagination parses and bounds page and page_size query params,
// returning (page, pageSize). The catalog default of 6 matches the grid the
// storefront renders.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 6
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
