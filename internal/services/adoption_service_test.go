package services

import (
	"context"
	"testing"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
)

func newAdoptionService(t *testing.T) *AdoptionService {
	t.Helper()
	return &AdoptionService{DB: newServiceDB(t, &domain.Pet{}, &domain.AdoptionRequest{})}
}

func seedAdoptablePet(t *testing.T, svc *AdoptionService, owner string) *domain.Pet {
	t.Helper()
	p, err := repo.CreatePet(context.Background(), svc.DB, &domain.Pet{
		Name:       "Biscuit",
		Category:   "dog",
		OwnerEmail: owner,
	})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return p
}

func TestAdoptionCreate(t *testing.T) {
	svc := newAdoptionService(t)
	ctx := context.Background()

	p := seedAdoptablePet(t, svc, "owner@x.y")

	r, err := svc.Create(ctx, domain.AdoptionRequest{PetID: p.ID, RequesterEmail: " Asker@X.Y "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status != domain.StatusPending || r.RequesterEmail != "asker@x.y" {
		t.Fatalf("unexpected request: %+v", r)
	}

	if _, err := svc.Create(ctx, domain.AdoptionRequest{PetID: p.ID}); err != ErrMissingField {
		t.Fatalf("missing requester: got %v, want ErrMissingField", err)
	}
	if _, err := svc.Create(ctx, domain.AdoptionRequest{RequesterEmail: "a@x.y"}); err != ErrMissingField {
		t.Fatalf("missing pet: got %v, want ErrMissingField", err)
	}
	if _, err := svc.Create(ctx, domain.AdoptionRequest{PetID: "missing", RequesterEmail: "a@x.y"}); err != ErrPetNotFound {
		t.Fatalf("unknown pet: got %v, want ErrPetNotFound", err)
	}
}

func TestAdoptionTransition_OneShot(t *testing.T) {
	svc := newAdoptionService(t)
	ctx := context.Background()

	p := seedAdoptablePet(t, svc, "owner@x.y")
	r, err := svc.Create(ctx, domain.AdoptionRequest{PetID: p.ID, RequesterEmail: "asker@x.y"})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}

	owner := auth.Identity{Email: "owner@x.y", Role: domain.RoleUser}
	asker := auth.Identity{Email: "asker@x.y", Role: domain.RoleUser}
	admin := auth.Identity{Email: "root@x.y", Role: domain.RoleAdmin}

	if err := svc.Transition(ctx, owner, r.ID, "approved"); err != ErrInvalidStatus {
		t.Fatalf("bad target: got %v, want ErrInvalidStatus", err)
	}
	if err := svc.Transition(ctx, owner, "missing", domain.StatusAccepted); err != ErrRequestNotFound {
		t.Fatalf("missing request: got %v, want ErrRequestNotFound", err)
	}
	// The requester does not own the pet and cannot decide.
	if err := svc.Transition(ctx, asker, r.ID, domain.StatusAccepted); err != auth.ErrForbidden {
		t.Fatalf("requester decide: got %v, want ErrForbidden", err)
	}

	if err := svc.Transition(ctx, owner, r.ID, domain.StatusAccepted); err != nil {
		t.Fatalf("owner decide: %v", err)
	}
	if err := svc.Transition(ctx, owner, r.ID, domain.StatusRejected); err != ErrAlreadyDecided {
		t.Fatalf("second decide: got %v, want ErrAlreadyDecided", err)
	}
	if err := svc.Transition(ctx, admin, r.ID, domain.StatusRejected); err != ErrAlreadyDecided {
		t.Fatalf("admin second decide: got %v, want ErrAlreadyDecided", err)
	}

	got, err := repo.GetRequest(ctx, svc.DB, r.ID)
	if err != nil || got.Status != domain.StatusAccepted {
		t.Fatalf("decision must stick: %+v err=%v", got, err)
	}
}

func TestAdoptionTransition_OrphanedRequest(t *testing.T) {
	svc := newAdoptionService(t)
	ctx := context.Background()

	p := seedAdoptablePet(t, svc, "owner@x.y")
	r, err := svc.Create(ctx, domain.AdoptionRequest{PetID: p.ID, RequesterEmail: "asker@x.y"})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if err := repo.DeletePet(ctx, svc.DB, p.ID); err != nil {
		t.Fatalf("delete pet: %v", err)
	}

	owner := auth.Identity{Email: "owner@x.y", Role: domain.RoleUser}
	admin := auth.Identity{Email: "root@x.y", Role: domain.RoleAdmin}

	// With the pet gone only an admin can close the request out.
	if err := svc.Transition(ctx, owner, r.ID, domain.StatusRejected); err != auth.ErrForbidden {
		t.Fatalf("former owner: got %v, want ErrForbidden", err)
	}
	if err := svc.Transition(ctx, admin, r.ID, domain.StatusRejected); err != nil {
		t.Fatalf("admin close-out: %v", err)
	}
}

func TestAdoptionListings(t *testing.T) {
	svc := newAdoptionService(t)
	ctx := context.Background()

	p1 := seedAdoptablePet(t, svc, "owner@x.y")
	p2 := seedAdoptablePet(t, svc, "other@x.y")

	mk := func(pet, requester string) {
		if _, err := svc.Create(ctx, domain.AdoptionRequest{PetID: pet, RequesterEmail: requester}); err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}
	mk(p1.ID, "asker@x.y")
	mk(p1.ID, "b@x.y")
	mk(p2.ID, "asker@x.y")

	forOwner, err := svc.ListForOwner(ctx, "owner@x.y")
	if err != nil || len(forOwner) != 2 {
		t.Fatalf("ListForOwner: %d err=%v", len(forOwner), err)
	}

	// An owner with no pets gets an empty list, not an error.
	none, err := svc.ListForOwner(ctx, "petless@x.y")
	if err != nil {
		t.Fatalf("petless owner: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("petless owner should see nothing, got %#v", none)
	}

	mine, err := svc.ListForRequester(ctx, "ASKER@X.Y")
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListForRequester: %d err=%v", len(mine), err)
	}
}

func TestAdoptionSummary_ZeroFilled(t *testing.T) {
	svc := newAdoptionService(t)
	ctx := context.Background()

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary empty: %v", err)
	}
	if sum.Pending != 0 || sum.Accepted != 0 || sum.Rejected != 0 {
		t.Fatalf("empty summary must be zero-filled: %+v", sum)
	}

	p := seedAdoptablePet(t, svc, "owner@x.y")
	owner := auth.Identity{Email: "owner@x.y", Role: domain.RoleUser}
	for i, target := range []string{domain.StatusAccepted, domain.StatusRejected, ""} {
		r, err := svc.Create(ctx, domain.AdoptionRequest{PetID: p.ID, RequesterEmail: "asker@x.y"})
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		if target != "" {
			if err := svc.Transition(ctx, owner, r.ID, target); err != nil {
				t.Fatalf("decide %d: %v", i, err)
			}
		}
	}

	sum, err = svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Pending != 1 || sum.Accepted != 1 || sum.Rejected != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
