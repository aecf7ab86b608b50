// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/config"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/http/handlers"
	"github.com/petadopt/go-adopt-backend/internal/http/middleware"
	"github.com/petadopt/go-adopt-backend/internal/repo"
	"github.com/petadopt/go-adopt-backend/internal/services"
)

// petRepoShim adapts the repository free functions to the services.PetRepo
// interface expected by the PetService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type petRepoShim struct{}

// CreatePet proxies repo.CreatePet.
func (petRepoShim) CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) (*domain.Pet, error) {
	return repo.CreatePet(ctx, db, p)
}

// GetPet proxies repo.GetPet.
func (petRepoShim) GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	return repo.GetPet(ctx, db, id)
}

// CountPets proxies repo.CountPets (pagination support).
func (petRepoShim) CountPets(ctx context.Context, db *gorm.DB, f repo.PetFilter) (int64, error) {
	return repo.CountPets(ctx, db, f)
}

// ListPetsPage proxies repo.ListPetsPage (pagination support).
func (petRepoShim) ListPetsPage(ctx context.Context, db *gorm.DB, f repo.PetFilter, offset, limit int) ([]domain.Pet, error) {
	return repo.ListPetsPage(ctx, db, f, offset, limit)
}

// ListPetsByOwner proxies repo.ListPetsByOwner.
func (petRepoShim) ListPetsByOwner(ctx context.Context, db *gorm.DB, ownerEmail string) ([]domain.Pet, error) {
	return repo.ListPetsByOwner(ctx, db, ownerEmail)
}

// ListAllPets proxies repo.ListAllPets.
func (petRepoShim) ListAllPets(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	return repo.ListAllPets(ctx, db)
}

// UpdatePetFields proxies repo.UpdatePetFields.
func (petRepoShim) UpdatePetFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	return repo.UpdatePetFields(ctx, db, id, fields)
}

// SetPetAdopted proxies repo.SetPetAdopted.
func (petRepoShim) SetPetAdopted(ctx context.Context, db *gorm.DB, id string, adopted bool) error {
	return repo.SetPetAdopted(ctx, db, id, adopted)
}

// DeletePet proxies repo.DeletePet.
func (petRepoShim) DeletePet(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeletePet(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and response compression
//  6. Metrics
//  7. Authentication (establishes Identity; anonymous passes through)
//  8. Idempotency-Key validation
//  9. Rate limiter (per identity/IP)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and gzip compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dependency injection: services ← repo/db
	userSvc := &services.UserService{DB: db}
	petSvc := &services.PetService{DB: db, Repo: petRepoShim{}}
	campaignSvc := &services.CampaignService{DB: db}
	paymentSvc := &services.PaymentService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL}
	adoptionSvc := &services.AdoptionService{DB: db}
	dashSvc := &services.DashboardService{DB: db, Payments: paymentSvc}
	h := handlers.New(userSvc, petSvc, campaignSvc, paymentSvc, adoptionSvc, dashSvc)

	// 7) Authentication: verify bearer credentials, resolve the stored role
	// fresh on every call so promotions take effect immediately.
	authn := &auth.Authenticator{
		Secret: []byte(cfg.JWTSecret),
		Roles:  userSvc.Role,
	}
	r.Use(middleware.Authenticate(authn))

	// 8) Idempotency-Key validation (shape only; replay is decided where the
	// campaign reference is known)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen: 200,
	}))

	// 9) Token-bucket rate limiter per identity/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIdentityOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Open catalog and campaign reads
		api.GET("/pets", h.ListPets)
		api.GET("/pets/:id", h.GetPet)
		api.GET("/campaigns", h.ListCampaigns)
		api.GET("/campaigns/recommended", h.RecommendCampaigns)
		api.GET("/campaigns/:id", h.GetCampaign)

		// Authenticated API
		authed := api.Group("", middleware.RequireAuth())
		{
			// Accounts
			authed.POST("/users", h.UpsertUser)
			authed.GET("/users/:email", h.GetUser)

			// Pets
			authed.POST("/pets", h.CreatePet)
			authed.PATCH("/pets/:id", h.UpdatePet)
			authed.PUT("/pets/:id/adopted", h.SetPetAdopted)
			authed.DELETE("/pets/:id", h.DeletePet)

			// Campaigns
			authed.POST("/campaigns", h.CreateCampaign)
			authed.PATCH("/campaigns/:id", h.UpdateCampaign)
			authed.PUT("/campaigns/:id/paused", h.SetCampaignPaused)
			authed.DELETE("/campaigns/:id", h.DeleteCampaign)
			authed.GET("/campaigns/:id/donators", h.ListCampaignDonators)

			// Payments
			authed.POST("/payments", h.CreatePayment)
			authed.DELETE("/payments/:id", h.DeletePayment)

			// Adoption workflow
			authed.POST("/adoptions", h.CreateAdoption)
			authed.PUT("/adoptions/:id/status", h.DecideAdoption)

			// Self-scoped reads
			authed.GET("/my/pets", h.ListMyPets)
			authed.GET("/my/campaigns", h.ListMyCampaigns)
			authed.GET("/my/payments", h.ListMyPayments)
			authed.GET("/my/adoptions", h.ListMyAdoptions)
			authed.GET("/my/pet-adoptions", h.ListMyPetAdoptions)
			authed.GET("/my/donations", h.MyDonationsByCampaign)
			authed.GET("/my/donations/history", h.MyDonationHistory)

			// Dashboard
			authed.GET("/dashboard", h.DashboardOverview)
			authed.GET("/dashboard/pets-by-category", h.PetsByCategory)

			// Admin
			authed.GET("/admin/users", h.ListUsers)
			authed.PUT("/admin/users/:id/promote", h.PromoteUser)
			authed.GET("/admin/pets", h.AdminListPets)
			authed.GET("/admin/payments", h.AdminListPayments)
			authed.GET("/admin/adoptions/summary", h.AdoptionSummary)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
