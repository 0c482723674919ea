// Owner HTTP handlers: minimal profile scaffolding. The registry needs
// owners only as the required reference on pets and as notification
// recipients.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/services"
)

// OwnerService defines the owner-profile operations consumed by HTTP handlers.
type OwnerService interface {
	Create(ctx context.Context, name, email string) (*domain.Owner, error)
	Get(ctx context.Context, id string) (*domain.Owner, error)
}

// CreateOwnerRequest is the JSON payload for creating an owner profile.
type CreateOwnerRequest struct {
	Name  string `json:"name"  binding:"required,min=1,max=100" example:"Maria Silva"`
	Email string `json:"email" binding:"required,email" example:"maria@example.com"`
}

// CreateOwner godoc
// @ID          createOwner
// @Summary     Create an owner profile
// @Tags        Owners
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateOwnerRequest  true  "Owner payload"
// @Success     201  {object} domain.Owner
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Email already registered"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /owners [post]
func (h *Handlers) CreateOwner(c *gin.Context) {
	var req CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and valid email required")
		return
	}

	o, err := h.ownerSvc.Create(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrOwnerEmailRequired) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		if isUniqueViolation(err) {
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, o)
}

// GetOwner godoc
// @ID          getOwner
// @Summary     Get one owner profile
// @Tags        Owners
// @Produce     json
// @Param       id  path  string  true  "Owner id (UUID)"  format(uuid)
// @Success     200  {object} domain.Owner
// @Failure     404  {object} handlers.ErrorResponse "Owner not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /owners/{id} [get]
func (h *Handlers) GetOwner(c *gin.Context) {
	o, err := h.ownerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "owner not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, o)
}
