// Adoption workflow HTTP handlers.
//
// This file exposes REST endpoints for adoption requests:
//   - POST /adoptions               (file a request)
//   - PUT  /adoptions/{id}/status   (decide, owner-or-admin, one-shot)
//   - GET  /my/adoptions            (requests the caller filed)
//   - GET  /my/pet-adoptions        (requests against the caller's pets)
//   - GET  /admin/adoptions/summary (counts per state, admin)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
)

//
// DTOs
//

// CreateAdoptionRequest is the JSON payload for filing an adoption request.
// The requester email always comes from the credential.
type CreateAdoptionRequest struct {
	// PetID identifies the pet being applied for (required).
	PetID         string `json:"pet_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	RequesterName string `json:"requester_name" example:"Jane Rivers"`
	Phone         string `json:"phone" example:"+30 210 0000000"`
	Address       string `json:"address" example:"12 Harbour St, Athens"`
}

// DecideAdoptionRequest is the JSON payload for deciding a pending request.
type DecideAdoptionRequest struct {
	// Status must be "accepted" or "rejected".
	Status string `json:"status" binding:"required" example:"accepted"`
}

//
// Handlers
//

// CreateAdoption godoc
// @ID          createAdoption
// @Summary     File an adoption request
// @Description Files a request for the given pet on behalf of the caller. The pet must exist; the request always starts pending.
// @Tags        Adoptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateAdoptionRequest  true  "Request payload"
//
// @Success     201  {object}  domain.AdoptionRequest
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /adoptions [post]
func (h *Handlers) CreateAdoption(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "pet_id is required")
		return
	}
	r, err := h.adoptionSvc.Create(c.Request.Context(), domain.AdoptionRequest{
		PetID:          req.PetID,
		RequesterEmail: actor.Email,
		RequesterName:  req.RequesterName,
		Phone:          req.Phone,
		Address:        req.Address,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// DecideAdoption godoc
// @ID          decideAdoption
// @Summary     Decide an adoption request
// @Description Moves a pending request to accepted or rejected. Only the owner of the requested pet or an admin may decide, and a request is decided at most once; a second decision returns 409 and leaves the stored status unchanged.
// @Tags        Adoptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                          true  "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.DecideAdoptionRequest  true  "Target status"
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already decided"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /adoptions/{id}/status [put]
func (h *Handlers) DecideAdoption(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req DecideAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	if err := h.adoptionSvc.Transition(c.Request.Context(), actor, c.Param("id"), req.Status); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListMyAdoptions godoc
// @ID          listMyAdoptions
// @Summary     List requests the caller filed
// @Description Returns every adoption request filed by the caller, newest first.
// @Tags        Adoptions
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.AdoptionRequest
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/adoptions [get]
func (h *Handlers) ListMyAdoptions(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	rs, err := h.adoptionSvc.ListForRequester(c.Request.Context(), actor.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rs)
}

// ListMyPetAdoptions godoc
// @ID          listMyPetAdoptions
// @Summary     List requests against the caller's pets
// @Description Returns every adoption request filed against a pet owned by the caller, newest first. A caller with no pets gets an empty list.
// @Tags        Adoptions
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.AdoptionRequest
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/pet-adoptions [get]
func (h *Handlers) ListMyPetAdoptions(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	rs, err := h.adoptionSvc.ListForOwner(c.Request.Context(), actor.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rs)
}

// AdoptionSummary godoc
// @ID          adoptionSummary
// @Summary     Adoption request counts per state
// @Description Returns pending, accepted, and rejected request counts, zero-filled. Admin only.
// @Tags        Adoptions
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.StatusSummary
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/adoptions/summary [get]
func (h *Handlers) AdoptionSummary(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	if err := auth.RequireRole(actor, domain.RoleAdmin); err != nil {
		failErr(c, err)
		return
	}
	sum, err := h.adoptionSvc.Summary(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}
