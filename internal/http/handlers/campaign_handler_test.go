package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/services"
)

// stubCampaignService implements CampaignService with pluggable behavior.
type stubCampaignService struct {
	createFn    func(ctx context.Context, createdBy string, c domain.DonationCampaign) (*domain.DonationCampaign, error)
	listFn      func(ctx context.Context, page, pageSize int) (*services.CampaignPage, error)
	getFn       func(ctx context.Context, id string) (*services.CampaignView, error)
	byOwnerFn   func(ctx context.Context, email string) ([]services.CampaignView, error)
	updateFn    func(ctx context.Context, actor auth.Identity, id string, upd services.CampaignUpdate) (*domain.DonationCampaign, error)
	pauseFn     func(ctx context.Context, actor auth.Identity, id string, paused bool) error
	deleteFn    func(ctx context.Context, actor auth.Identity, id string) error
	recommendFn func(ctx context.Context, excludeID string, limit int) ([]services.CampaignView, error)
	donatorsFn  func(ctx context.Context, id string) ([]services.Donator, error)
}

func (s *stubCampaignService) Create(ctx context.Context, createdBy string, c domain.DonationCampaign) (*domain.DonationCampaign, error) {
	if s.createFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createFn(ctx, createdBy, c)
}

func (s *stubCampaignService) List(ctx context.Context, page, pageSize int) (*services.CampaignPage, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, page, pageSize)
}

func (s *stubCampaignService) GetByID(ctx context.Context, id string) (*services.CampaignView, error) {
	if s.getFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getFn(ctx, id)
}

func (s *stubCampaignService) ListByOwner(ctx context.Context, email string) ([]services.CampaignView, error) {
	if s.byOwnerFn == nil {
		return nil, errUnexpectedCall
	}
	return s.byOwnerFn(ctx, email)
}

func (s *stubCampaignService) Update(ctx context.Context, actor auth.Identity, id string, upd services.CampaignUpdate) (*domain.DonationCampaign, error) {
	if s.updateFn == nil {
		return nil, errUnexpectedCall
	}
	return s.updateFn(ctx, actor, id, upd)
}

func (s *stubCampaignService) Pause(ctx context.Context, actor auth.Identity, id string, paused bool) error {
	if s.pauseFn == nil {
		return errUnexpectedCall
	}
	return s.pauseFn(ctx, actor, id, paused)
}

func (s *stubCampaignService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, actor, id)
}

func (s *stubCampaignService) Recommend(ctx context.Context, excludeID string, limit int) ([]services.CampaignView, error) {
	if s.recommendFn == nil {
		return nil, errUnexpectedCall
	}
	return s.recommendFn(ctx, excludeID, limit)
}

func (s *stubCampaignService) Donators(ctx context.Context, id string) ([]services.Donator, error) {
	if s.donatorsFn == nil {
		return nil, errUnexpectedCall
	}
	return s.donatorsFn(ctx, id)
}

func campaignHandlers(svc CampaignService) *Handlers {
	return New(nil, nil, svc, nil, nil, nil)
}

func TestCreateCampaign(t *testing.T) {
	t.Run("creator forced from credential", func(t *testing.T) {
		var gotCreator string
		h := campaignHandlers(&stubCampaignService{
			createFn: func(_ context.Context, createdBy string, cm domain.DonationCampaign) (*domain.DonationCampaign, error) {
				gotCreator = createdBy
				cm.ID = "c1"
				cm.CreatedBy = createdBy
				return &cm, nil
			},
		})
		r := newEngine(userIdentity("maker@x.y"))
		r.POST("/campaigns", h.CreateCampaign)

		w := doJSON(t, r, http.MethodPost, "/campaigns",
			`{"title":"Surgery fund","goal_amount":1500,"urgency":2,"created_by":"spoof@x.y"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		if gotCreator != "maker@x.y" {
			t.Fatalf("creator must come from the credential, got %q", gotCreator)
		}
	})

	t.Run("title and goal required", func(t *testing.T) {
		h := campaignHandlers(&stubCampaignService{})
		r := newEngine(userIdentity("maker@x.y"))
		r.POST("/campaigns", h.CreateCampaign)

		w := doJSON(t, r, http.MethodPost, "/campaigns", `{"title":"No goal"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestListCampaigns_PaginationEnvelope(t *testing.T) {
	var gotPage, gotSize int
	h := campaignHandlers(&stubCampaignService{
		listFn: func(_ context.Context, page, pageSize int) (*services.CampaignPage, error) {
			gotPage, gotSize = page, pageSize
			return &services.CampaignPage{
				Items:    []domain.DonationCampaign{{ID: "c1"}},
				NextPage: 3,
				HasMore:  true,
			}, nil
		},
	})
	r := newEngine(nil)
	r.GET("/campaigns", h.ListCampaigns)

	w := doJSON(t, r, http.MethodGet, "/campaigns?page=2&page_size=4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotPage != 2 || gotSize != 4 {
		t.Fatalf("pagination = (%d,%d)", gotPage, gotSize)
	}
	var resp ListCampaignsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Campaigns) != 1 || !resp.Pagination.HasMore || resp.Pagination.Page != 2 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Pagination.NextPage != 3 {
		t.Fatalf("next_page = %d, want 3", resp.Pagination.NextPage)
	}
}

func TestListCampaigns_LastPageOmitsNextPage(t *testing.T) {
	h := campaignHandlers(&stubCampaignService{
		listFn: func(_ context.Context, page, pageSize int) (*services.CampaignPage, error) {
			return &services.CampaignPage{
				Items:    []domain.DonationCampaign{{ID: "c1"}},
				NextPage: 2,
				HasMore:  false,
			}, nil
		},
	})
	r := newEngine(nil)
	r.GET("/campaigns", h.ListCampaigns)

	w := doJSON(t, r, http.MethodGet, "/campaigns", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	pg, _ := body["pagination"].(map[string]any)
	if pg == nil {
		t.Fatalf("missing pagination: %s", w.Body.String())
	}
	if _, present := pg["next_page"]; present {
		t.Fatalf("final page must not advertise next_page: %s", w.Body.String())
	}
}

func TestGetCampaign_DerivedTotalInBody(t *testing.T) {
	h := campaignHandlers(&stubCampaignService{
		getFn: func(_ context.Context, id string) (*services.CampaignView, error) {
			return &services.CampaignView{
				DonationCampaign:      domain.DonationCampaign{ID: id, Title: "Surgery fund"},
				CurrentDonationAmount: 40,
			}, nil
		},
	})
	r := newEngine(nil)
	r.GET("/campaigns/:id", h.GetCampaign)

	w := doJSON(t, r, http.MethodGet, "/campaigns/c1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["current_donation_amount"] != float64(40) {
		t.Fatalf("derived total missing from body: %s", w.Body.String())
	}
}

func TestRecommendCampaigns_QueryPassthrough(t *testing.T) {
	var gotExclude string
	var gotLimit int
	h := campaignHandlers(&stubCampaignService{
		recommendFn: func(_ context.Context, excludeID string, limit int) ([]services.CampaignView, error) {
			gotExclude, gotLimit = excludeID, limit
			return []services.CampaignView{}, nil
		},
	})
	r := newEngine(nil)
	r.GET("/campaigns/recommended", h.RecommendCampaigns)

	if w := doJSON(t, r, http.MethodGet, "/campaigns/recommended?exclude=c9&limit=5", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotExclude != "c9" || gotLimit != 5 {
		t.Fatalf("query not forwarded: exclude=%q limit=%d", gotExclude, gotLimit)
	}

	// Absent limit falls back to the default of 3.
	if w := doJSON(t, r, http.MethodGet, "/campaigns/recommended", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotLimit != 3 {
		t.Fatalf("default limit = %d, want 3", gotLimit)
	}
}

func TestListCampaignDonators_CreatorGate(t *testing.T) {
	view := &services.CampaignView{
		DonationCampaign: domain.DonationCampaign{ID: "c1", CreatedBy: "maker@x.y"},
	}

	t.Run("stranger forbidden before projection runs", func(t *testing.T) {
		donatorsCalled := false
		h := campaignHandlers(&stubCampaignService{
			getFn: func(context.Context, string) (*services.CampaignView, error) { return view, nil },
			donatorsFn: func(context.Context, string) ([]services.Donator, error) {
				donatorsCalled = true
				return nil, nil
			},
		})
		r := newEngine(userIdentity("other@x.y"))
		r.GET("/campaigns/:id/donators", h.ListCampaignDonators)

		w := doJSON(t, r, http.MethodGet, "/campaigns/c1/donators", "")
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
		if donatorsCalled {
			t.Fatalf("projection must not run for a forbidden caller")
		}
	})

	t.Run("creator sees the projection", func(t *testing.T) {
		h := campaignHandlers(&stubCampaignService{
			getFn: func(context.Context, string) (*services.CampaignView, error) { return view, nil },
			donatorsFn: func(context.Context, string) ([]services.Donator, error) {
				return []services.Donator{{Email: "giver@x.y", Name: "Giver", Amount: 25}}, nil
			},
		})
		r := newEngine(userIdentity("maker@x.y"))
		r.GET("/campaigns/:id/donators", h.ListCampaignDonators)

		w := doJSON(t, r, http.MethodGet, "/campaigns/c1/donators", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		var ds []services.Donator
		if err := json.Unmarshal(w.Body.Bytes(), &ds); err != nil || len(ds) != 1 || ds[0].Amount != 25 {
			t.Fatalf("unexpected projection: %s err=%v", w.Body.String(), err)
		}
	})

	t.Run("missing campaign maps to 404", func(t *testing.T) {
		h := campaignHandlers(&stubCampaignService{
			getFn: func(context.Context, string) (*services.CampaignView, error) {
				return nil, services.ErrCampaignNotFound
			},
		})
		r := newEngine(adminIdentity("root@x.y"))
		r.GET("/campaigns/:id/donators", h.ListCampaignDonators)

		if w := doJSON(t, r, http.MethodGet, "/campaigns/gone/donators", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestSetCampaignPaused(t *testing.T) {
	t.Run("paused flag required", func(t *testing.T) {
		h := campaignHandlers(&stubCampaignService{})
		r := newEngine(userIdentity("maker@x.y"))
		r.PUT("/campaigns/:id/paused", h.SetCampaignPaused)

		w := doJSON(t, r, http.MethodPut, "/campaigns/c1/paused", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("resume forwards paused=false", func(t *testing.T) {
		var gotPaused *bool
		h := campaignHandlers(&stubCampaignService{
			pauseFn: func(_ context.Context, _ auth.Identity, _ string, paused bool) error {
				gotPaused = &paused
				return nil
			},
		})
		r := newEngine(userIdentity("maker@x.y"))
		r.PUT("/campaigns/:id/paused", h.SetCampaignPaused)

		w := doJSON(t, r, http.MethodPut, "/campaigns/c1/paused", `{"paused":false}`)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if gotPaused == nil || *gotPaused {
			t.Fatalf("paused=false not forwarded")
		}
	})
}

func TestUpdateCampaign_ServiceGateSurfaces(t *testing.T) {
	h := campaignHandlers(&stubCampaignService{
		updateFn: func(context.Context, auth.Identity, string, services.CampaignUpdate) (*domain.DonationCampaign, error) {
			return nil, auth.ErrForbidden
		},
	})
	r := newEngine(userIdentity("other@x.y"))
	r.PATCH("/campaigns/:id", h.UpdateCampaign)

	w := doJSON(t, r, http.MethodPatch, "/campaigns/c1", `{"title":"X"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if decodeError(t, w).Code != ErrCodeForbidden {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
}
