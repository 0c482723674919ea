// Kind HTTP handlers: the species catalog and its per-track counters.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
	"github.com/meupet/go-pet-backend/internal/services"
)

// KindService defines the kind catalog operations consumed by HTTP handlers.
type KindService interface {
	// Create inserts a kind; the slug derives from the name.
	Create(ctx context.Context, name string) (*domain.Kind, error)
	// List returns the whole catalog.
	List(ctx context.Context) ([]domain.Kind, error)
	// LostKinds counts active lost-and-found pets per kind.
	LostKinds(ctx context.Context) ([]repo.KindCount, error)
	// AdoptionKinds counts active adoption-track pets per kind.
	AdoptionKinds(ctx context.Context) ([]repo.KindCount, error)
}

// CreateKindRequest is the JSON payload for creating a kind.
type CreateKindRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" example:"Dog"`
}

// CreateKind godoc
// @ID          createKind
// @Summary     Create a kind
// @Tags        Kinds
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateKindRequest  true  "Kind payload"
// @Success     201  {object} domain.Kind
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Name already taken"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /kinds [post]
func (h *Handlers) CreateKind(c *gin.Context) {
	var req CreateKindRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1–100 chars)")
		return
	}

	k, err := h.kindSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrKindNameRequired) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		if isUniqueViolation(err) {
			fail(c, http.StatusConflict, ErrCodeConflict, "kind already exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, k)
}

// ListKinds godoc
// @ID          listKinds
// @Summary     List all kinds
// @Tags        Kinds
// @Produce     json
// @Success     200  {array}  domain.Kind
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /kinds [get]
func (h *Handlers) ListKinds(c *gin.Context) {
	kinds, err := h.kindSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, kinds)
}

// ListLostKinds godoc
// @ID          listLostKinds
// @Summary     Count lost-and-found pets per kind
// @Description Kinds with no matching active pets are omitted.
// @Tags        Kinds
// @Produce     json
// @Success     200  {array}  repo.KindCount
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /kinds/lost [get]
func (h *Handlers) ListLostKinds(c *gin.Context) {
	counts, err := h.kindSvc.LostKinds(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, counts)
}

// ListAdoptionKinds godoc
// @ID          listAdoptionKinds
// @Summary     Count adoption-track pets per kind
// @Description Kinds with no matching active pets are omitted.
// @Tags        Kinds
// @Produce     json
// @Success     200  {array}  repo.KindCount
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /kinds/adoption [get]
func (h *Handlers) ListAdoptionKinds(c *gin.Context) {
	counts, err := h.kindSvc.AdoptionKinds(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, counts)
}

// isUniqueViolation detects unique-constraint violations across drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
