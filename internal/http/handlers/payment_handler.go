// Payment ledger HTTP handlers.
//
// This file exposes REST endpoints for the append-only donation ledger:
//   - POST   /payments        (record a donation, idempotent via header)
//   - GET    /my/payments     (caller's donation history)
//   - GET    /admin/payments  (whole ledger, admin)
//   - DELETE /payments/{id}   (administrative correction)
//
// Records enter the ledger after the upstream gateway has authorized the
// charge; this layer validates and persists, it never charges. There is no
// update endpoint on purpose.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/http/middleware"
)

//
// DTOs
//

// CreatePaymentRequest is the JSON payload for recording a donation. The
// donator email always comes from the credential, never the body.
type CreatePaymentRequest struct {
	// CampaignID references the funded campaign; legacy typed-reference
	// encodings such as ObjectId("...") are accepted and normalized.
	CampaignID string `json:"campaign_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Amount donated; must be strictly positive.
	Amount      float64 `json:"amount" binding:"required" example:"25"`
	DonatorName string  `json:"donator_name" example:"Jane Rivers"`
}

//
// Handlers
//

// CreatePayment godoc
// @ID          createPayment
// @Summary     Record a donation
// @Description Appends a donation to the ledger after validating the amount and resolving the campaign reference. A non-positive amount, an unknown campaign, or a paused campaign leaves the ledger untouched. Retries carrying the same Idempotency-Key return the originally recorded entry.
// @Tags        Payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Client-generated key for safe retries"
// @Param       body             body    handlers.CreatePaymentRequest  true  "Donation payload"
//
// @Success     201  {object}  domain.PaymentRecord
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Campaign not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Campaign paused"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payments [post]
func (h *Handlers) CreatePayment(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "campaign_id and amount are required")
		return
	}
	idemKey, _ := middleware.GetIdempotencyKey(c)

	rec, err := h.paymentSvc.Insert(c.Request.Context(), domain.PaymentRecord{
		CampaignID:   req.CampaignID,
		DonatorEmail: actor.Email,
		DonatorName:  req.DonatorName,
		Amount:       req.Amount,
	}, idemKey)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, rec)
}

// ListMyPayments godoc
// @ID          listMyPayments
// @Summary     List the caller's donations
// @Description Returns the caller's ledger entries, newest first. Each entry carries the campaign title and image snapshotted at donation time.
// @Tags        Payments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.PaymentRecord
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/payments [get]
func (h *Handlers) ListMyPayments(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	recs, err := h.paymentSvc.List(c.Request.Context(), actor, actor.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, recs)
}

// AdminListPayments godoc
// @ID          adminListPayments
// @Summary     List the whole ledger
// @Description Returns every ledger entry, newest first. Admin only.
// @Tags        Payments
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.PaymentRecord
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/payments [get]
func (h *Handlers) AdminListPayments(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	recs, err := h.paymentSvc.List(c.Request.Context(), actor, "")
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, recs)
}

// DeletePayment godoc
// @ID          deletePayment
// @Summary     Delete a ledger entry
// @Description Removes one entry as an administrative correction. Admin only; funding totals derived from the ledger change accordingly.
// @Tags        Payments
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Payment ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Payment not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payments/{id} [delete]
func (h *Handlers) DeletePayment(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payment id must be a UUID")
		return
	}
	if err := h.paymentSvc.Delete(c.Request.Context(), actor, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
