package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/http/middleware"
	"github.com/petadopt/go-adopt-backend/internal/services"
)

// stubPaymentService implements PaymentService with pluggable behavior.
type stubPaymentService struct {
	insertFn func(ctx context.Context, rec domain.PaymentRecord, idemKey string) (*domain.PaymentRecord, error)
	listFn   func(ctx context.Context, actor auth.Identity, donatorEmail string) ([]domain.PaymentRecord, error)
	deleteFn func(ctx context.Context, actor auth.Identity, id string) error
}

func (s *stubPaymentService) Insert(ctx context.Context, rec domain.PaymentRecord, idemKey string) (*domain.PaymentRecord, error) {
	if s.insertFn == nil {
		return nil, errUnexpectedCall
	}
	return s.insertFn(ctx, rec, idemKey)
}

func (s *stubPaymentService) List(ctx context.Context, actor auth.Identity, donatorEmail string) ([]domain.PaymentRecord, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, actor, donatorEmail)
}

func (s *stubPaymentService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, actor, id)
}

func paymentHandlers(svc PaymentService) *Handlers {
	return New(nil, nil, nil, svc, nil, nil)
}

func TestCreatePayment(t *testing.T) {
	t.Run("donator forced from credential", func(t *testing.T) {
		var got domain.PaymentRecord
		h := paymentHandlers(&stubPaymentService{
			insertFn: func(_ context.Context, rec domain.PaymentRecord, _ string) (*domain.PaymentRecord, error) {
				got = rec
				rec.ID = "pay1"
				return &rec, nil
			},
		})
		r := newEngine(userIdentity("giver@x.y"))
		r.POST("/payments", h.CreatePayment)

		// Email in the body must be ignored in favor of the credential.
		w := doJSON(t, r, http.MethodPost, "/payments",
			`{"campaign_id":"c1","amount":25,"donator_name":"Jane","donator_email":"spoof@x.y"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		if got.DonatorEmail != "giver@x.y" {
			t.Fatalf("donator email must come from the credential, got %q", got.DonatorEmail)
		}
		if got.CampaignID != "c1" || got.Amount != 25 || got.DonatorName != "Jane" {
			t.Fatalf("payload not forwarded: %+v", got)
		}
	})

	t.Run("missing amount rejected", func(t *testing.T) {
		h := paymentHandlers(&stubPaymentService{})
		r := newEngine(userIdentity("giver@x.y"))
		r.POST("/payments", h.CreatePayment)

		w := doJSON(t, r, http.MethodPost, "/payments", `{"campaign_id":"c1"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("paused campaign maps to 409", func(t *testing.T) {
		h := paymentHandlers(&stubPaymentService{
			insertFn: func(context.Context, domain.PaymentRecord, string) (*domain.PaymentRecord, error) {
				return nil, services.ErrCampaignPaused
			},
		})
		r := newEngine(userIdentity("giver@x.y"))
		r.POST("/payments", h.CreatePayment)

		w := doJSON(t, r, http.MethodPost, "/payments", `{"campaign_id":"c1","amount":5}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if decodeError(t, w).Code != ErrCodeCampaignPaused {
			t.Fatalf("unexpected envelope: %s", w.Body.String())
		}
	})
}

// The validated Idempotency-Key must reach the service through the
// middleware stash, not through a second header read in the handler.
func TestCreatePayment_IdempotencyKeyPickup(t *testing.T) {
	var gotKey string
	h := paymentHandlers(&stubPaymentService{
		insertFn: func(_ context.Context, rec domain.PaymentRecord, idemKey string) (*domain.PaymentRecord, error) {
			gotKey = idemKey
			rec.ID = "pay1"
			return &rec, nil
		},
	})
	r := newEngine(userIdentity("giver@x.y"))
	r.POST("/payments", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}), h.CreatePayment)

	req := httptest.NewRequest(http.MethodPost, "/payments",
		strings.NewReader(`{"campaign_id":"c1","amount":10}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "donation-2024.001")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	if gotKey != "donation-2024.001" {
		t.Fatalf("idempotency key not delivered to the service, got %q", gotKey)
	}
}

func TestListPayments_Scoping(t *testing.T) {
	var gotScope string
	svc := &stubPaymentService{
		listFn: func(_ context.Context, _ auth.Identity, donatorEmail string) ([]domain.PaymentRecord, error) {
			gotScope = donatorEmail
			return []domain.PaymentRecord{}, nil
		},
	}
	h := paymentHandlers(svc)

	r := newEngine(userIdentity("giver@x.y"))
	r.GET("/my/payments", h.ListMyPayments)
	if w := doJSON(t, r, http.MethodGet, "/my/payments", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotScope != "giver@x.y" {
		t.Fatalf("self listing must scope to the caller, got %q", gotScope)
	}

	ra := newEngine(adminIdentity("root@x.y"))
	ra.GET("/admin/payments", h.AdminListPayments)
	if w := doJSON(t, ra, http.MethodGet, "/admin/payments", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotScope != "" {
		t.Fatalf("admin listing must request the whole ledger, got scope %q", gotScope)
	}
}

func TestListPayments_EmptyLedgerRendersArray(t *testing.T) {
	h := paymentHandlers(&stubPaymentService{
		listFn: func(context.Context, auth.Identity, string) ([]domain.PaymentRecord, error) {
			return []domain.PaymentRecord{}, nil
		},
	})
	r := newEngine(userIdentity("giver@x.y"))
	r.GET("/my/payments", h.ListMyPayments)

	w := doJSON(t, r, http.MethodGet, "/my/payments", "")
	var recs []domain.PaymentRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("expected a JSON array, got %s", w.Body.String())
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty array, got %v", recs)
	}
}

func TestDeletePayment(t *testing.T) {
	t.Run("id must be a uuid", func(t *testing.T) {
		h := paymentHandlers(&stubPaymentService{})
		r := newEngine(adminIdentity("root@x.y"))
		r.DELETE("/payments/:id", h.DeletePayment)

		w := doJSON(t, r, http.MethodDelete, "/payments/42", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing entry maps to 404", func(t *testing.T) {
		h := paymentHandlers(&stubPaymentService{
			deleteFn: func(context.Context, auth.Identity, string) error {
				return services.ErrPaymentNotFound
			},
		})
		r := newEngine(adminIdentity("root@x.y"))
		r.DELETE("/payments/:id", h.DeletePayment)

		w := doJSON(t, r, http.MethodDelete, "/payments/"+uuid.NewString(), "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
