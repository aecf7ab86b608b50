// Package services – AdoptionService
//
// This file implements the AdoptionService, which enforces the adoption
// request workflow: requests start pending and move exactly once to accepted
// or rejected, decided by the pet's owner or an admin. Ownership is resolved
// against the pet catalog at decision time, never cached on the request.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

// StatusSummary reports adoption-request counts per workflow state. All
// three states are always present, zero-filled.
type StatusSummary struct {
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

// AdoptionService implements the adoption-request workflow.
type AdoptionService struct {
	// DB is the database handle used for all workflow operations.
	DB *gorm.DB
}

// Create files a new request for petID on behalf of the requester. The pet
// must exist; the request always starts pending.
func (s *AdoptionService) Create(ctx context.Context, r domain.AdoptionRequest) (*domain.AdoptionRequest, error) {
	r.RequesterEmail = strings.ToLower(strings.TrimSpace(r.RequesterEmail))
	if r.RequesterEmail == "" || strings.TrimSpace(r.PetID) == "" {
		return nil, ErrMissingField
	}
	if _, err := repo.GetPet(ctx, s.DB, r.PetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return repo.CreateRequest(ctx, s.DB, &r)
}

// Transition decides a pending request.
//
// Semantics:
//   - target must be accepted or rejected; otherwise ErrInvalidStatus.
//   - The request must exist; otherwise ErrRequestNotFound.
//   - Only the owner of the requested pet or an admin may decide. When the
//     pet no longer exists, only an admin may close the request out.
//   - The request must still be pending; otherwise ErrAlreadyDecided and
//     the stored status is unchanged. The underlying update is predicated
//     on the pending state, so a concurrent double-decide loses cleanly.
func (s *AdoptionService) Transition(ctx context.Context, actor auth.Identity, id, target string) error {
	if target != domain.StatusAccepted && target != domain.StatusRejected {
		return ErrInvalidStatus
	}
	r, err := repo.GetRequest(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	p, err := repo.GetPet(ctx, s.DB, r.PetID)
	switch {
	case err == nil:
		if err := auth.RequireSelfOrAdmin(actor, p.OwnerEmail); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Orphaned request (pet deleted): admin correction only.
		if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
			return err
		}
	default:
		return err
	}

	if r.Status != domain.StatusPending {
		return ErrAlreadyDecided
	}
	if err := repo.DecideRequest(ctx, s.DB, id, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlreadyDecided
		}
		return err
	}
	return nil
}

// ListForOwner returns every request filed against a pet owned by
// ownerEmail, newest first. An owner with no pets gets an empty list, not an
// error.
func (s *AdoptionService) ListForOwner(ctx context.Context, ownerEmail string) ([]domain.AdoptionRequest, error) {
	ids, err := repo.PetIDsByOwner(ctx, s.DB, ownerEmail)
	if err != nil {
		return nil, err
	}
	return repo.ListRequestsByPets(ctx, s.DB, ids)
}

// ListForRequester returns every request filed by email, newest first.
func (s *AdoptionService) ListForRequester(ctx context.Context, email string) ([]domain.AdoptionRequest, error) {
	return repo.ListRequestsByRequester(ctx, s.DB, email)
}

// Summary returns request counts per status for dashboards.
func (s *AdoptionService) Summary(ctx context.Context) (*StatusSummary, error) {
	rows, err := repo.RequestCountsByStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	var out StatusSummary
	for _, r := range rows {
		switch r.Key {
		case domain.StatusPending:
			out.Pending = r.Count
		case domain.StatusAccepted:
			out.Accepted = r.Count
		case domain.StatusRejected:
			out.Rejected = r.Count
		}
	}
	return &out, nil
}
