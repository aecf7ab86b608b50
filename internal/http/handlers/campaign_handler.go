// Donation campaign HTTP handlers.
//
// This file exposes REST endpoints for campaigns:
//   - POST   /campaigns                  (create)
//   - GET    /campaigns                  (list, paginated, ETag support)
//   - GET    /campaigns/recommended      (ranked suggestions)
//   - GET    /campaigns/{id}            (fetch with derived funding total)
//   - GET    /campaigns/{id}/donators   (donator projection, creator-or-admin)
//   - PATCH  /campaigns/{id}            (partial update, creator-or-admin)
//   - PUT    /campaigns/{id}/paused     (pause toggle, creator-or-admin)
//   - DELETE /campaigns/{id}            (creator-or-admin)
//   - GET    /my/campaigns              (caller's campaigns with totals)
//
// A campaign's funding total is always derived from the payment ledger at
// read time; no endpoint here ever writes a running counter.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
	"github.com/petadopt/go-adopt-backend/internal/services"
	"github.com/petadopt/go-adopt-backend/internal/utils"
)

//
// DTOs
//

// CreateCampaignRequest is the JSON payload for creating a campaign.
type CreateCampaignRequest struct {
	// Title names the campaign (required).
	Title string `json:"title" binding:"required,min=1,max=255" example:"Surgery fund for Max"`
	// GoalAmount is the funding target; must be positive.
	GoalAmount  float64 `json:"goal_amount" binding:"required" example:"1500"`
	ImageURL    string  `json:"image_url" example:"https://cdn.example.com/max.jpg"`
	Description string  `json:"description" example:"Max needs a hip operation."`
	// Urgency weights the recommendation ranking (higher first).
	Urgency int `json:"urgency" example:"2"`
}

// UpdateCampaignRequest is the JSON payload for a partial campaign update.
// Absent fields keep their stored values.
type UpdateCampaignRequest struct {
	Title       *string  `json:"title"`
	ImageURL    *string  `json:"image_url"`
	Description *string  `json:"description"`
	GoalAmount  *float64 `json:"goal_amount"`
	Urgency     *int     `json:"urgency"`
}

// SetPausedRequest is the JSON payload for the pause toggle.
type SetPausedRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// ListCampaignsResponse wraps a page of campaigns and pagination information.
type ListCampaignsResponse struct {
	Campaigns  []domain.DonationCampaign `json:"campaigns"`
	Pagination Pagination                `json:"pagination"`
}

//
// Handlers
//

// CreateCampaign godoc
// @ID          createCampaign
// @Summary     Create a donation campaign
// @Description Creates a campaign owned by the caller. Title is required and the goal amount must be positive.
// @Tags        Campaigns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateCampaignRequest  true  "Campaign payload"
//
// @Success     201  {object}  domain.DonationCampaign
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns [post]
func (h *Handlers) CreateCampaign(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title and goal_amount are required")
		return
	}
	cm, err := h.campaignSvc.Create(c.Request.Context(), actor.Email, domain.DonationCampaign{
		Title:       req.Title,
		GoalAmount:  req.GoalAmount,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Urgency:     req.Urgency,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListCampaigns godoc
// @ID          listCampaigns
// @Summary     List campaigns (paginated)
// @Description Returns a page of campaigns, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Campaigns
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(6)
//
// @Success     200  {object}  handlers.ListCampaignsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns [get]
func (h *Handlers) ListCampaigns(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.campaignSvc.(*services.CampaignService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.CampaignsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"campaigns:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	pg, err := h.campaignSvc.List(ctx, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	next := 0
	if pg.HasMore {
		next = pg.NextPage
	}
	ok(c, http.StatusOK, ListCampaignsResponse{
		Campaigns: pg.Items,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			NextPage: next,
			HasMore:  pg.HasMore,
		},
	})
}

// RecommendCampaigns godoc
// @ID          recommendCampaigns
// @Summary     Recommend active campaigns
// @Description Returns up to limit active campaigns ranked most urgent first, least funded winning ties, newest breaking remaining ties. The exclude parameter removes the campaign the caller is already viewing.
// @Tags        Campaigns
// @Produce     json
//
// @Param       exclude  query  string  false "Campaign ID to exclude"  format(uuid)
// @Param       limit    query  int     false "Maximum results"  minimum(1) default(3)
//
// @Success     200  {array}   services.CampaignView
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/recommended [get]
func (h *Handlers) RecommendCampaigns(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 3)
	views, err := h.campaignSvc.Recommend(c.Request.Context(), strings.TrimSpace(c.Query("exclude")), limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, views)
}

// GetCampaign godoc
// @ID          getCampaign
// @Summary     Fetch one campaign
// @Description Returns the campaign augmented with its current funding total, recomputed from the donation ledger on this read.
// @Tags        Campaigns
// @Produce     json
//
// @Param       id  path  string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {object}  services.CampaignView
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/{id} [get]
func (h *Handlers) GetCampaign(c *gin.Context) {
	v, err := h.campaignSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// ListCampaignDonators godoc
// @ID          listCampaignDonators
// @Summary     List a campaign's donators
// @Description Returns the donator projection (email, name, amount) for the campaign, newest donation first. Visible to the campaign creator and admins only.
// @Tags        Campaigns
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     200  {array}   services.Donator
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/{id}/donators [get]
func (h *Handlers) ListCampaignDonators(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	id := c.Param("id")
	v, err := h.campaignSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	if err := auth.RequireSelfOrAdmin(actor, v.CreatedBy); err != nil {
		failErr(c, err)
		return
	}
	ds, err := h.campaignSvc.Donators(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ds)
}

// ListMyCampaigns godoc
// @ID          listMyCampaigns
// @Summary     List the caller's campaigns
// @Description Returns every campaign created by the caller, each augmented with its derived funding total.
// @Tags        Campaigns
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   services.CampaignView
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/campaigns [get]
func (h *Handlers) ListMyCampaigns(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	vs, err := h.campaignSvc.ListByOwner(c.Request.Context(), actor.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, vs)
}

// UpdateCampaign godoc
// @ID          updateCampaign
// @Summary     Update a campaign (partial)
// @Description Merges the supplied fields into the campaign. Only the creator or an admin may edit; the goal amount must stay positive.
// @Tags        Campaigns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                          true  "Campaign ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateCampaignRequest  true  "Fields to update"
//
// @Success     200  {object}  domain.DonationCampaign
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/{id} [patch]
func (h *Handlers) UpdateCampaign(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cm, err := h.campaignSvc.Update(c.Request.Context(), actor, c.Param("id"), services.CampaignUpdate{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
		Urgency:     req.Urgency,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// SetCampaignPaused godoc
// @ID          setCampaignPaused
// @Summary     Pause or resume a campaign
// @Description Toggles whether the campaign accepts new donations. Only the creator or an admin.
// @Tags        Campaigns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                     true  "Campaign ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SetPausedRequest  true  "Paused flag"
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/{id}/paused [put]
func (h *Handlers) SetCampaignPaused(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req SetPausedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Paused == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "paused flag required")
		return
	}
	if err := h.campaignSvc.Pause(c.Request.Context(), actor, c.Param("id"), *req.Paused); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeleteCampaign godoc
// @ID          deleteCampaign
// @Summary     Delete a campaign
// @Description Hard-deletes the campaign. Only the creator or an admin. Ledger entries referencing the campaign are retained.
// @Tags        Campaigns
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Campaign ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string                  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /campaigns/{id} [delete]
func (h *Handlers) DeleteCampaign(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	if err := h.campaignSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
