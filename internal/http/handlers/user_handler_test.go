package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/services"
)

// stubUserService implements UserService with pluggable behavior.
type stubUserService struct {
	ensureFn  func(ctx context.Context, email, name string) (*domain.User, bool, error)
	upsertFn  func(ctx context.Context, email, name string) (*domain.User, error)
	getFn     func(ctx context.Context, actor auth.Identity, email string) (*domain.User, error)
	listFn    func(ctx context.Context, actor auth.Identity) ([]domain.User, error)
	promoteFn func(ctx context.Context, actor auth.Identity, id string) error
}

func (s *stubUserService) Ensure(ctx context.Context, email, name string) (*domain.User, bool, error) {
	if s.ensureFn == nil {
		return nil, false, errUnexpectedCall
	}
	return s.ensureFn(ctx, email, name)
}

func (s *stubUserService) Upsert(ctx context.Context, email, name string) (*domain.User, error) {
	if s.upsertFn == nil {
		return nil, errUnexpectedCall
	}
	return s.upsertFn(ctx, email, name)
}

func (s *stubUserService) Get(ctx context.Context, actor auth.Identity, email string) (*domain.User, error) {
	if s.getFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getFn(ctx, actor, email)
}

func (s *stubUserService) List(ctx context.Context, actor auth.Identity) ([]domain.User, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, actor)
}

func (s *stubUserService) Promote(ctx context.Context, actor auth.Identity, id string) error {
	if s.promoteFn == nil {
		return errUnexpectedCall
	}
	return s.promoteFn(ctx, actor, id)
}

func userHandlers(svc UserService) *Handlers {
	return New(svc, nil, nil, nil, nil, nil)
}

func TestUpsertUser(t *testing.T) {
	t.Run("first sign-in returns 201", func(t *testing.T) {
		h := userHandlers(&stubUserService{
			ensureFn: func(_ context.Context, email, name string) (*domain.User, bool, error) {
				return &domain.User{ID: "u1", Email: email, Name: name}, true, nil
			},
		})
		r := newEngine(userIdentity("ada@x.y"))
		r.POST("/users", h.UpsertUser)

		w := doJSON(t, r, http.MethodPost, "/users", `{"name":"Ada"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		var u domain.User
		if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil || u.Email != "ada@x.y" {
			t.Fatalf("unexpected body: %s err=%v", w.Body.String(), err)
		}
	})

	t.Run("repeat sign-in with a new name refreshes it", func(t *testing.T) {
		upserted := false
		h := userHandlers(&stubUserService{
			ensureFn: func(_ context.Context, email, _ string) (*domain.User, bool, error) {
				return &domain.User{ID: "u1", Email: email, Name: "Old"}, false, nil
			},
			upsertFn: func(_ context.Context, email, name string) (*domain.User, error) {
				upserted = true
				return &domain.User{ID: "u1", Email: email, Name: name}, nil
			},
		})
		r := newEngine(userIdentity("ada@x.y"))
		r.POST("/users", h.UpsertUser)

		w := doJSON(t, r, http.MethodPost, "/users", `{"name":"Ada L."}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		if !upserted {
			t.Fatalf("changed name must trigger a refresh")
		}
	})

	t.Run("repeat sign-in with the same name skips the refresh", func(t *testing.T) {
		h := userHandlers(&stubUserService{
			ensureFn: func(_ context.Context, email, _ string) (*domain.User, bool, error) {
				return &domain.User{ID: "u1", Email: email, Name: "Ada"}, false, nil
			},
			// upsertFn left nil: calling it would fail the request.
		})
		r := newEngine(userIdentity("ada@x.y"))
		r.POST("/users", h.UpsertUser)

		w := doJSON(t, r, http.MethodPost, "/users", `{"name":"Ada"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
	})
}

func TestGetUser_ForbiddenSurfaces(t *testing.T) {
	h := userHandlers(&stubUserService{
		getFn: func(_ context.Context, actor auth.Identity, email string) (*domain.User, error) {
			if err := auth.RequireSelfOrAdmin(actor, email); err != nil {
				return nil, err
			}
			return &domain.User{Email: email}, nil
		},
	})
	r := newEngine(userIdentity("ada@x.y"))
	r.GET("/users/:email", h.GetUser)

	if w := doJSON(t, r, http.MethodGet, "/users/other@x.y", ""); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/users/ada@x.y", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPromoteUser(t *testing.T) {
	t.Run("id must be a uuid", func(t *testing.T) {
		h := userHandlers(&stubUserService{})
		r := newEngine(adminIdentity("root@x.y"))
		r.PUT("/admin/users/:id/promote", h.PromoteUser)

		w := doJSON(t, r, http.MethodPut, "/admin/users/42/promote", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing account maps to 404", func(t *testing.T) {
		h := userHandlers(&stubUserService{
			promoteFn: func(context.Context, auth.Identity, string) error {
				return services.ErrUserNotFound
			},
		})
		r := newEngine(adminIdentity("root@x.y"))
		r.PUT("/admin/users/:id/promote", h.PromoteUser)

		w := doJSON(t, r, http.MethodPut, "/admin/users/"+uuid.NewString()+"/promote", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("promotion succeeds", func(t *testing.T) {
		var gotID string
		h := userHandlers(&stubUserService{
			promoteFn: func(_ context.Context, _ auth.Identity, id string) error {
				gotID = id
				return nil
			},
		})
		r := newEngine(adminIdentity("root@x.y"))
		r.PUT("/admin/users/:id/promote", h.PromoteUser)

		id := uuid.NewString()
		w := doJSON(t, r, http.MethodPut, "/admin/users/"+id+"/promote", "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if gotID != id {
			t.Fatalf("promote id = %q, want %q", gotID, id)
		}
	})
}
