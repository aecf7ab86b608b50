package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petadopt/go-adopt-backend/internal/config"
	"github.com/petadopt/go-adopt-backend/internal/domain"
)

const routerTestSecret = "router-test-secret"

func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Pet{},
		&domain.DonationCampaign{},
		&domain.PaymentRecord{},
		&domain.AdoptionRequest{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		APIBasePath:    "/api/v1",
		JWTSecret:      routerTestSecret,
		RateRPS:        1000,
		RateBurst:      1000,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "router-test"},
	}

	r := gin.New()
	RegisterRoutes(r, db, cfg)
	return r
}

func routerToken(t *testing.T, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(routerTestSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func apiDo(r *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	r := newTestAPI(t)

	if w := apiDo(r, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}

	w := apiDo(r, http.MethodGet, "/definitely/not/here", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "not_found" {
		t.Fatalf("unknown route envelope: %s err=%v", w.Body.String(), err)
	}

	w = apiDo(r, http.MethodDelete, "/health", "", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: expected 405, got %d", w.Code)
	}
}

func TestRouter_OpenCatalogRead(t *testing.T) {
	r := newTestAPI(t)

	w := apiDo(r, http.MethodGet, "/api/v1/pets", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Pets       []domain.Pet `json:"pets"`
		Pagination struct {
			Page     int  `json:"page"`
			PageSize int  `json:"page_size"`
			HasMore  bool `json:"has_more"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v (%s)", err, w.Body.String())
	}
	if resp.Pagination.Page != 1 || resp.Pagination.PageSize != 6 || resp.Pagination.HasMore {
		t.Fatalf("default pagination: %+v", resp.Pagination)
	}
	if resp.Pets == nil {
		t.Fatalf("empty catalog must render as an array: %s", w.Body.String())
	}
}

func TestRouter_AuthGates(t *testing.T) {
	r := newTestAPI(t)

	// No credential on an authenticated route.
	w := apiDo(r, http.MethodPost, "/api/v1/pets", "", `{"name":"Biscuit","category":"dog"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}

	// Garbage credential is rejected even on open routes.
	w = apiDo(r, http.MethodGet, "/api/v1/pets", "Bearer not-a-token", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}

	// A valid credential reaches the handler.
	token := routerToken(t, "ada@x.y")
	w = apiDo(r, http.MethodPost, "/api/v1/pets", token, `{"name":"Biscuit","category":"dog"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("valid token: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var p domain.Pet
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil || p.OwnerEmail != "ada@x.y" {
		t.Fatalf("created pet: %s err=%v", w.Body.String(), err)
	}
}

// Full donation flow through the assembled stack: create the campaign,
// donate twice under the same Idempotency-Key, and observe the funding
// total derived from the single ledger entry.
func TestRouter_DonationFlow(t *testing.T) {
	r := newTestAPI(t)
	token := routerToken(t, "giver@x.y")

	w := apiDo(r, http.MethodPost, "/api/v1/campaigns", token,
		`{"title":"Surgery fund","goal_amount":1500,"urgency":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var cm domain.DonationCampaign
	if err := json.Unmarshal(w.Body.Bytes(), &cm); err != nil || cm.ID == "" {
		t.Fatalf("campaign body: %s err=%v", w.Body.String(), err)
	}

	donate := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments",
			strings.NewReader(fmt.Sprintf(`{"campaign_id":%q,"amount":25,"donator_name":"Giver"}`, cm.ID)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "gift-001")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := donate()
	if first.Code != http.StatusCreated {
		t.Fatalf("first donation: expected 201, got %d (%s)", first.Code, first.Body.String())
	}
	var rec1, rec2 domain.PaymentRecord
	if err := json.Unmarshal(first.Body.Bytes(), &rec1); err != nil || rec1.ID == "" {
		t.Fatalf("first donation body: %s err=%v", first.Body.String(), err)
	}

	second := donate()
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d (%s)", second.Code, second.Body.String())
	}
	if err := json.Unmarshal(second.Body.Bytes(), &rec2); err != nil {
		t.Fatalf("replay body: %v", err)
	}
	if rec2.ID != rec1.ID {
		t.Fatalf("replay returned a new entry: %q vs %q", rec2.ID, rec1.ID)
	}

	w = apiDo(r, http.MethodGet, "/api/v1/campaigns/"+cm.ID, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get campaign: expected 200, got %d", w.Code)
	}
	var view struct {
		CurrentDonationAmount float64 `json:"current_donation_amount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("campaign view: %v", err)
	}
	if view.CurrentDonationAmount != 25 {
		t.Fatalf("funding total = %v, want 25 (idempotent replay must not double count)", view.CurrentDonationAmount)
	}
}

func TestRouter_CampaignListETag(t *testing.T) {
	r := newTestAPI(t)
	token := routerToken(t, "maker@x.y")

	w := apiDo(r, http.MethodPost, "/api/v1/campaigns", token,
		`{"title":"Kennel roof","goal_amount":800}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign: expected 201, got %d", w.Code)
	}

	w = apiDo(r, http.MethodGet, "/api/v1/campaigns", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("list response missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil)
	req.Header.Set("If-None-Match", etag)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	if rw.Code != http.StatusNotModified {
		t.Fatalf("matching ETag: expected 304, got %d", rw.Code)
	}
}
