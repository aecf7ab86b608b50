// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Pet model,
// including the filtered catalog queries behind the paginated listing.
//
// The catalog filter is composed once (petQuery) and shared by the count and
// page queries so that both always observe the same predicate. The two
// queries are still separate reads: under concurrent writes they may see
// different states, which the pagination contract tolerates.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

// PetFilter describes the optional predicates of the catalog listing. Zero
// values mean "any": an empty Search or Category adds no predicate, and a
// nil Adopted matches both adopted and available pets.
type PetFilter struct {
	Search     string // case-insensitive substring match on name
	Category   string // exact match (stored lowercase)
	Adopted    *bool  // tri-state: nil means any
	OwnerEmail string // exact match
}

// petQuery applies the filter predicates to a base query on the pets table.
func petQuery(db *gorm.DB, f PetFilter) *gorm.DB {
	q := db.Model(&domain.Pet{})
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", strings.ToLower(c))
	}
	if f.Adopted != nil {
		q = q.Where("adopted = ?", *f.Adopted)
	}
	if o := strings.TrimSpace(f.OwnerEmail); o != "" {
		q = q.Where("owner_email = ?", strings.ToLower(o))
	}
	return q
}

// CreatePet inserts a new Pet row owned by ownerEmail. The id is a generated
// UUID, Adopted defaults to false, and CreatedAt is stamped in UTC.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (*domain.Pet, error) {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.OwnerEmail = strings.ToLower(strings.TrimSpace(p.OwnerEmail))
	p.Adopted = false
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPet fetches a single pet by id, or ErrNotFound if missing.
func GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPets returns the exact number of pets matching the filter. The count
// runs over the same predicate as ListPetsPage so pagination never sticks on
// an approximate total.
func CountPets(ctx context.Context, db *gorm.DB, f PetFilter) (int64, error) {
	var total int64
	err := petQuery(db.WithContext(ctx), f).Count(&total).Error
	return total, err
}

// ListPetsPage returns a page of pets matching the filter, ordered by
// creation time descending. The caller computes offset and limit.
func ListPetsPage(ctx context.Context, db *gorm.DB, f PetFilter, offset, limit int) ([]domain.Pet, error) {
	var out []domain.Pet
	err := petQuery(db.WithContext(ctx), f).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPetsByOwner returns all pets owned by ownerEmail, newest first.
func ListPetsByOwner(ctx context.Context, db *gorm.DB, ownerEmail string) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("owner_email = ?", strings.ToLower(strings.TrimSpace(ownerEmail))).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListAllPets returns the unfiltered catalog, newest first. Admin-gated at
// the handler layer.
func ListAllPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// PetIDsByOwner returns the ids of all pets owned by ownerEmail. Used by the
// adoption workflow to resolve which requests an owner may see and decide.
func PetIDsByOwner(ctx context.Context, db *gorm.DB, ownerEmail string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Pet{}).
		Where("owner_email = ?", strings.ToLower(strings.TrimSpace(ownerEmail))).
		Pluck("id", &ids).Error
	return ids, err
}

// UpdatePetFields applies a partial-field merge to the pet identified by id.
// The fields map must already be restricted to the mutable allow-list (the
// service layer owns that decision). Returns ErrNotFound when no row matches.
func UpdatePetFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Pet{}).
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

// SetPetAdopted sets the adopted flag on the pet identified by id.
// Returns ErrNotFound when no row matches.
func SetPetAdopted(ctx context.Context, db *gorm.DB, id string, adopted bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Pet{}).
		Where("id = ?", id).
		Updates(map[string]any{"adopted": adopted, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePet hard-deletes the pet identified by id. Returns ErrNotFound when
// no row matches.
func DeletePet(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Pet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
