// User HTTP handlers.
//
// This file exposes REST endpoints for platform accounts:
//   - POST   /users                     (login upsert)
//   - GET    /users/{email}             (fetch, self-or-admin)
//   - GET    /admin/users               (list, admin)
//   - PUT    /admin/users/{id}/promote  (promote to admin)
//
// Accounts are keyed by email, which the credential supplies; the request
// body can only refresh the display name, never the identity.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// DTOs
//

// UpsertUserRequest is the JSON payload posted on every sign-in.
type UpsertUserRequest struct {
	// Name refreshes the display name; empty keeps the stored one.
	Name string `json:"name" example:"Jane Rivers"`
}

//
// Handlers
//

// UpsertUser godoc
// @ID          upsertUser
// @Summary     Create or refresh the caller's account
// @Description Creates an account for the authenticated email on first sign-in, otherwise refreshes the display name. Returns 201 only when the account was created by this call.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpsertUserRequest  true  "Profile payload"
//
// @Success     200  {object}  domain.User
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [post]
func (h *Handlers) UpsertUser(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)

	u, created, err := h.userSvc.Ensure(c.Request.Context(), actor.Email, name)
	if err != nil {
		failErr(c, err)
		return
	}
	if !created && name != "" && name != u.Name {
		if u, err = h.userSvc.Upsert(c.Request.Context(), actor.Email, name); err != nil {
			failErr(c, err)
			return
		}
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, u)
}

// GetUser godoc
// @ID          getUser
// @Summary     Fetch one account
// @Description Returns the account for the given email. Visible to the account owner and admins only.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       email  path  string  true  "Account email"  example(jane@example.com)
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{email} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	u, err := h.userSvc.Get(c.Request.Context(), actor, c.Param("email"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List all accounts
// @Description Returns every registered account, newest first. Admin only.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	us, err := h.userSvc.List(c.Request.Context(), actor)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, us)
}

// PromoteUser godoc
// @ID          promoteUser
// @Summary     Promote an account to admin
// @Description Raises the account identified by id to the admin role. Admin only; not reversible through the API.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Account ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/users/{id}/promote [put]
func (h *Handlers) PromoteUser(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a UUID")
		return
	}
	if err := h.userSvc.Promote(c.Request.Context(), actor, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
