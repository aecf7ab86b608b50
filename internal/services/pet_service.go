// Package services – PetService
//
// This file implements the PetService, which owns the pet catalog: creating
// listings, filtered/paginated reads, allow-listed partial updates, and the
// owner-or-admin gated adopted flag and admin-only deletion. Pagination uses
// an exact count over the same filter as the page query so hasMore never
// sticks on an approximate total.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// PetRepo defines the repository contract required by PetService.
// Implementations are responsible for persistence of pet listings.
type PetRepo interface {
	// CreatePet inserts a new listing.
	CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (*domain.Pet, error)

	// GetPet fetches a listing by id.
	GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error)

	// CountPets returns the exact number of listings matching the filter.
	CountPets(ctx context.Context, db *gorm.DB, f repo.PetFilter) (int64, error)

	// ListPetsPage returns a page of listings matching the filter.
	ListPetsPage(ctx context.Context, db *gorm.DB, f repo.PetFilter, offset, limit int) ([]domain.Pet, error)

	// ListPetsByOwner returns all listings owned by ownerEmail.
	ListPetsByOwner(ctx context.Context, db *gorm.DB, ownerEmail string) ([]domain.Pet, error)

	// ListAllPets returns the unfiltered catalog.
	ListAllPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error)

	// UpdatePetFields applies an allow-listed partial update.
	UpdatePetFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error

	// SetPetAdopted sets the adopted flag.
	SetPetAdopted(ctx context.Context, db *gorm.DB, id string, adopted bool) error

	// DeletePet hard-deletes a listing.
	DeletePet(ctx context.Context, db *gorm.DB, id string) error
}

// PetUpdate is the allow-list of mutable pet fields. Only non-nil fields are
// merged; anything outside this set cannot be changed through the update
// path, which prevents arbitrary field injection.
type PetUpdate struct {
	Name        *string
	Category    *string
	ImageURL    *string
	Location    *string
	Description *string
}

// PetPage is one page of catalog results plus the exact-count pagination
// verdict.
type PetPage struct {
	Items   []domain.Pet
	Total   int64
	HasMore bool
}

// PetService provides catalog operations over pet listings.
type PetService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the pet repository used by this service.
	Repo PetRepo
}

// lowerCaser folds categories to a canonical lowercase form so exact-match
// filters behave case-insensitively across locales.
var lowerCaser = cases.Lower(language.Und)

// Create inserts a listing owned by ownerEmail. Name and category are
// required; the category is stored lowercase. Adopted always starts false.
func (s *PetService) Create(ctx context.Context, ownerEmail string, p domain.Pet) (*domain.Pet, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = lowerCaser.String(strings.TrimSpace(p.Category))
	if p.Name == "" || p.Category == "" || strings.TrimSpace(ownerEmail) == "" {
		return nil, ErrMissingField
	}
	p.OwnerEmail = ownerEmail
	return s.Repo.CreatePet(ctx, s.DB, &p)
}

// List returns one page of the catalog for the given filter, ordered by
// creation time descending. hasMore is true iff strictly fewer than the
// exact matching count have been returned across pages 1..page; a page past
// the end yields an empty item list with hasMore=false.
func (s *PetService) List(ctx context.Context, f repo.PetFilter, page, pageSize int) (*PetPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	f.Category = lowerCaser.String(f.Category)
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountPets(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	items := []domain.Pet{}
	if total > 0 {
		if items, err = s.Repo.ListPetsPage(ctx, s.DB, f, offset, pageSize); err != nil {
			return nil, err
		}
	}
	return &PetPage{
		Items:   items,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// ListByOwner returns all listings owned by ownerEmail, newest first.
func (s *PetService) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Pet, error) {
	return s.Repo.ListPetsByOwner(ctx, s.DB, ownerEmail)
}

// Get fetches a listing by id.
func (s *PetService) Get(ctx context.Context, id string) (*domain.Pet, error) {
	p, err := s.Repo.GetPet(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPetNotFound
	}
	return p, err
}

// Update merges the non-nil fields of upd into the listing. Authorization is
// the caller's concern (the route applies the capability check); this
// operation only constrains *which* fields may change.
func (s *PetService) Update(ctx context.Context, id string, upd PetUpdate) (*domain.Pet, error) {
	fields := map[string]any{}
	if upd.Name != nil {
		fields["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Category != nil {
		fields["category"] = lowerCaser.String(strings.TrimSpace(*upd.Category))
	}
	if upd.ImageURL != nil {
		fields["image_url"] = *upd.ImageURL
	}
	if upd.Location != nil {
		fields["location"] = *upd.Location
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if err := s.Repo.UpdatePetFields(ctx, s.DB, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetAdopted sets the adopted flag on a listing. Only the listing owner or
// an admin may flip it; the check runs against the stored owner before any
// write, and a forbidden caller leaves the flag unchanged.
func (s *PetService) SetAdopted(ctx context.Context, actor auth.Identity, id string, adopted bool) error {
	p, err := s.Repo.GetPet(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		return err
	}
	if err := auth.RequireSelfOrAdmin(actor, p.OwnerEmail); err != nil {
		return err
	}
	if err := s.Repo.SetPetAdopted(ctx, s.DB, id, adopted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		return err
	}
	return nil
}

// Delete hard-deletes a listing. Admin only.
func (s *PetService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	err := s.Repo.DeletePet(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPetNotFound
	}
	return err
}

// AdminList returns the unfiltered, unpaginated catalog. Admin only.
func (s *PetService) AdminList(ctx context.Context, actor auth.Identity) ([]domain.Pet, error) {
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Repo.ListAllPets(ctx, s.DB)
}
