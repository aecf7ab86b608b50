// Dashboard HTTP handlers.
//
// This file exposes the read-side reporting endpoints:
//   - GET /dashboard                    (role-shaped overview)
//   - GET /dashboard/pets-by-category   (catalog breakdown)
//   - GET /my/donations                 (caller's giving grouped per campaign)
//   - GET /my/donations/history         (caller's full donation history)
//
// All four are pure reads; the overview's shape depends on the caller's
// role, resolved freshly on every request.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardOverview godoc
// @ID          dashboardOverview
// @Summary     Role-shaped dashboard overview
// @Description Admins receive global counts (users, pets, campaigns, total donations); everyone else receives counts scoped to their own records.
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.Overview
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dashboard [get]
func (h *Handlers) DashboardOverview(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	ov, err := h.dashSvc.Overview(c.Request.Context(), actor)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ov)
}

// PetsByCategory godoc
// @ID          petsByCategory
// @Summary     Listing counts per category
// @Description Returns pet listing counts grouped by category, largest first.
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   services.CategoryCount
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dashboard/pets-by-category [get]
func (h *Handlers) PetsByCategory(c *gin.Context) {
	if _, okID := caller(c); !okID {
		return
	}
	rows, err := h.dashSvc.PetsByCategory(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// MyDonationsByCampaign godoc
// @ID          myDonationsByCampaign
// @Summary     The caller's giving grouped per campaign
// @Description Returns the caller's donation totals grouped by campaign, largest total first. Legacy-encoded campaign references in the ledger are folded into their canonical campaign.
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   services.CampaignSum
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/donations [get]
func (h *Handlers) MyDonationsByCampaign(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	sums, err := h.dashSvc.MyDonationsByCampaign(c.Request.Context(), actor)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, sums)
}

// MyDonationHistory godoc
// @ID          myDonationHistory
// @Summary     The caller's donation history
// @Description Returns every ledger entry the caller created, newest first, including the campaign display snapshot taken at donation time.
// @Tags        Dashboard
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.PaymentRecord
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/donations/history [get]
func (h *Handlers) MyDonationHistory(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	recs, err := h.dashSvc.MyDonationHistory(c.Request.Context(), actor)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, recs)
}
