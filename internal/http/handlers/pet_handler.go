// Pet HTTP handlers.
//
// This file exposes REST endpoints for the pet catalog:
//   - POST   /pets               (create listing)
//   - GET    /pets               (filtered, paginated catalog)
//   - GET    /pets/{id}          (fetch one)
//   - PATCH  /pets/{id}          (partial update, owner-or-admin)
//   - PUT    /pets/{id}/adopted  (flip adopted flag, owner-or-admin)
//   - DELETE /pets/{id}          (admin)
//   - GET    /my/pets            (caller's listings)
//   - GET    /admin/pets         (unfiltered catalog, admin)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petadopt/go-adopt-backend/internal/auth"
	"github.com/petadopt/go-adopt-backend/internal/domain"
	"github.com/petadopt/go-adopt-backend/internal/repo"
	"github.com/petadopt/go-adopt-backend/internal/services"
)

//
// DTOs
//

// CreatePetRequest is the JSON payload for creating a listing.
type CreatePetRequest struct {
	// Name is the pet's display name (required).
	Name string `json:"name" binding:"required,min=1,max=255" example:"Biscuit"`
	// Category is the listing category; stored lowercase (required).
	Category    string `json:"category" binding:"required,min=1,max=64" example:"dog"`
	ImageURL    string `json:"image_url" example:"https://cdn.example.com/biscuit.jpg"`
	Location    string `json:"location" example:"Athens"`
	Description string `json:"description" example:"Two-year-old beagle, great with kids."`
}

// UpdatePetRequest is the JSON payload for a partial listing update. Absent
// fields keep their stored values; no other fields can be changed through
// this endpoint.
type UpdatePetRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

// SetAdoptedRequest is the JSON payload for flipping the adopted flag.
type SetAdoptedRequest struct {
	Adopted *bool `json:"adopted" binding:"required"`
}

// ListPetsResponse wraps a page of listings and pagination information. The
// total is exact for the applied filter, so HasMore never sticks on a stale
// count.
type ListPetsResponse struct {
	Pets       []domain.Pet `json:"pets"`
	Pagination Pagination   `json:"pagination"`
}

// petFilterFromQuery builds the catalog filter from query parameters.
// Supported: search (substring on name), category (exact, case-insensitive),
// adopted (true/false), owner (exact email).
func petFilterFromQuery(c *gin.Context) repo.PetFilter {
	f := repo.PetFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Category:   strings.TrimSpace(c.Query("category")),
		OwnerEmail: strings.TrimSpace(c.Query("owner")),
	}
	switch c.Query("adopted") {
	case "true":
		t := true
		f.Adopted = &t
	case "false":
		fl := false
		f.Adopted = &fl
	}
	return f
}

//
// Handlers
//

// CreatePet godoc
// @ID          createPet
// @Summary     Create a pet listing
// @Description Creates a listing owned by the caller. Name and category are required; the category is stored lowercase and the listing starts not adopted.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreatePetRequest  true  "Listing payload"
//
// @Success     201  {object}  domain.Pet
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets [post]
func (h *Handlers) CreatePet(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and category are required")
		return
	}
	p, err := h.petSvc.Create(c.Request.Context(), actor.Email, domain.Pet{
		Name:        req.Name,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPets godoc
// @ID          listPets
// @Summary     Browse the pet catalog (paginated)
// @Description Returns a filtered page of listings, newest first, with an exact total count for the filter.
// @Tags        Pets
// @Produce     json
//
// @Param       search     query  string  false "Substring match on name (case-insensitive)"
// @Param       category   query  string  false "Exact category match (case-insensitive)"  example(dog)
// @Param       adopted    query  bool    false "Filter by adopted flag"
// @Param       owner      query  string  false "Exact owner email match"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(6)
//
// @Success     200  {object}  handlers.ListPetsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	page, pageSize := clampPagination(c)
	pg, err := h.petSvc.List(c.Request.Context(), petFilterFromQuery(c), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListPetsResponse{
		Pets: pg.Items,
		Pagination: Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    pg.Total,
			HasMore:  pg.HasMore,
		},
	})
}

// GetPet godoc
// @ID          getPet
// @Summary     Fetch one listing
// @Tags        Pets
// @Produce     json
//
// @Param       id  path  string  true  "Pet ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Pet
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets/{id} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	p, err := h.petSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListMyPets godoc
// @ID          listMyPets
// @Summary     List the caller's listings
// @Description Returns every listing owned by the authenticated caller, newest first.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.Pet
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /my/pets [get]
func (h *Handlers) ListMyPets(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	ps, err := h.petSvc.ListByOwner(c.Request.Context(), actor.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ps)
}

// UpdatePet godoc
// @ID          updatePet
// @Summary     Update a listing (partial)
// @Description Merges the supplied fields into the listing. Only the owner or an admin may edit; only name, category, image, location, and description can change.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                     true  "Pet ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdatePetRequest  true  "Fields to update"
//
// @Success     200  {object}  domain.Pet
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets/{id} [patch]
func (h *Handlers) UpdatePet(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	id := c.Param("id")
	var req UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// Ownership gate runs against the stored listing before any write.
	p, err := h.petSvc.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	if err := auth.RequireSelfOrAdmin(actor, p.OwnerEmail); err != nil {
		failErr(c, err)
		return
	}

	updated, err := h.petSvc.Update(c.Request.Context(), id, services.PetUpdate{
		Name:        req.Name,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// SetPetAdopted godoc
// @ID          setPetAdopted
// @Summary     Flip the adopted flag
// @Description Marks the listing adopted or available again. Only the owner or an admin; a forbidden caller leaves the flag unchanged.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                      true  "Pet ID (UUID)"  format(uuid)
// @Param       body  body  handlers.SetAdoptedRequest  true  "Adopted flag"
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets/{id}/adopted [put]
func (h *Handlers) SetPetAdopted(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	var req SetAdoptedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Adopted == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "adopted flag required")
		return
	}
	if err := h.petSvc.SetAdopted(c.Request.Context(), actor, c.Param("id"), *req.Adopted); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeletePet godoc
// @ID          deletePet
// @Summary     Delete a listing
// @Description Hard-deletes the listing. Admin only.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Pet ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string                  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets/{id} [delete]
func (h *Handlers) DeletePet(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "pet id must be a UUID")
		return
	}
	if err := h.petSvc.Delete(c.Request.Context(), actor, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// AdminListPets godoc
// @ID          adminListPets
// @Summary     List every listing
// @Description Returns the unfiltered, unpaginated catalog. Admin only.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.Pet
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/pets [get]
func (h *Handlers) AdminListPets(c *gin.Context) {
	actor, okID := caller(c)
	if !okID {
		return
	}
	ps, err := h.petSvc.AdminList(c.Request.Context(), actor)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ps)
}
