package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return &UserService{DB: newServiceDB(t, &domain.User{})}
}

func TestUserEnsure(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, created, err := svc.Ensure(ctx, " Ada@X.Y ", "Ada")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !created || u.Email != "ada@x.y" || u.Role != domain.RoleUser {
		t.Fatalf("first sign-in: created=%v user=%+v", created, u)
	}

	// A second sign-in finds the existing account; the name is not merged
	// through Ensure.
	u2, created, err := svc.Ensure(ctx, "ada@x.y", "Someone Else")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if created || u2.ID != u.ID || u2.Name != "Ada" {
		t.Fatalf("second sign-in: created=%v user=%+v", created, u2)
	}

	if _, _, err := svc.Ensure(ctx, "  ", "x"); err != ErrMissingField {
		t.Fatalf("blank email: got %v, want ErrMissingField", err)
	}
}

func TestUserUpsert(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.Upsert(ctx, "ada@x.y", "Ada")
	if err != nil || u.Name != "Ada" {
		t.Fatalf("create via upsert: %+v err=%v", u, err)
	}

	u, err = svc.Upsert(ctx, "ADA@X.Y", "Ada Lovelace")
	if err != nil {
		t.Fatalf("merge via upsert: %v", err)
	}
	if u.Name != "Ada Lovelace" || u.Role != domain.RoleUser {
		t.Fatalf("merge result: %+v", u)
	}

	if _, err := svc.Upsert(ctx, "", "x"); err != ErrMissingField {
		t.Fatalf("blank email: got %v, want ErrMissingField", err)
	}
}

func TestUserGet_SelfOrAdmin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Ensure(ctx, "ada@x.y", "Ada"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	self := auth.Identity{Email: "ada@x.y", Role: domain.RoleUser}
	other := auth.Identity{Email: "bob@x.y", Role: domain.RoleUser}
	admin := auth.Identity{Email: "root@x.y", Role: domain.RoleAdmin}

	if _, err := svc.Get(ctx, other, "ada@x.y"); err != auth.ErrForbidden {
		t.Fatalf("foreign read: got %v, want ErrForbidden", err)
	}
	if u, err := svc.Get(ctx, self, "ada@x.y"); err != nil || u.Name != "Ada" {
		t.Fatalf("self read: %+v err=%v", u, err)
	}
	if _, err := svc.Get(ctx, admin, "ada@x.y"); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if _, err := svc.Get(ctx, admin, "missing@x.y"); err != ErrUserNotFound {
		t.Fatalf("missing account: got %v, want ErrUserNotFound", err)
	}
}

func TestUserPromote_AndRoleResolution(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, _, err := svc.Ensure(ctx, "ada@x.y", "Ada")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	user := auth.Identity{Email: "someone@x.y", Role: domain.RoleUser}
	admin := auth.Identity{Email: "root@x.y", Role: domain.RoleAdmin}

	if err := svc.Promote(ctx, user, u.ID); err != auth.ErrForbidden {
		t.Fatalf("user promote: got %v, want ErrForbidden", err)
	}
	if _, err := svc.List(ctx, user); err != auth.ErrForbidden {
		t.Fatalf("user list: got %v, want ErrForbidden", err)
	}

	if err := svc.Promote(ctx, admin, u.ID); err != nil {
		t.Fatalf("admin promote: %v", err)
	}
	if err := svc.Promote(ctx, admin, uuid.NewString()); err != ErrUserNotFound {
		t.Fatalf("promote missing: got %v, want ErrUserNotFound", err)
	}

	// The role resolver reflects the promotion immediately, so the next
	// authenticated call carries the admin role.
	role, err := svc.Role(ctx, "ada@x.y")
	if err != nil || role != domain.RoleAdmin {
		t.Fatalf("resolved role = %q err=%v", role, err)
	}
	role, err = svc.Role(ctx, "unknown@x.y")
	if err != nil || role != "" {
		t.Fatalf("unknown account role = %q err=%v", role, err)
	}

	users, err := svc.List(ctx, admin)
	if err != nil || len(users) != 1 {
		t.Fatalf("admin list: %d err=%v", len(users), err)
	}
}
