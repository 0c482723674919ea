// Pet HTTP handlers.
//
// This file exposes REST endpoints for pet resources: registration, the
// public filtered views (by kind and status track), the maintenance views
// (unpublished/stale/expired), and the lifecycle transitions.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. The two
// notification-gated transitions always answer 202 Accepted with the
// current pet, so a caller cannot tell "already in the desired state"
// from "notification failed" without inspecting the (unchanged) state.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
	"github.com/meupet/go-pet-backend/internal/services"
	"github.com/meupet/go-pet-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PetService defines pet registration, views, and lifecycle operations
// consumed by HTTP handlers. Implementations should be safe for
// concurrent use and must honor the provided context.
type PetService interface {
	// Register creates a pet record (active, unpublished, Missing default).
	Register(ctx context.Context, in services.RegisterInput) (*domain.Pet, error)
	// Get fetches a pet by slug, active or not.
	Get(ctx context.Context, slug string) (*domain.Pet, error)
	// ListPage returns a page of active pets and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Pet, int64, error)
	// LostOrFound returns active Missing/Found pets of one kind.
	LostOrFound(ctx context.Context, ref domain.KindRef) ([]domain.Pet, error)
	// ForAdoptionOrAdopted returns active ForAdoption/Adopted pets of one kind.
	ForAdoptionOrAdopted(ctx context.Context, ref domain.KindRef) ([]domain.Pet, error)
	// Unpublished returns all pets not yet externally published.
	Unpublished(ctx context.Context) ([]domain.Pet, error)
	// Stale returns request-action candidates.
	Stale(ctx context.Context) ([]domain.Pet, error)
	// Expired returns pets with an overdue pending request.
	Expired(ctx context.Context) ([]domain.Pet, error)
	// ChangeStatus toggles Missing→Found, anything else→Adopted.
	ChangeStatus(ctx context.Context, slug string) (*domain.Pet, error)
	// RequestAction runs the notification-gated removal-request workflow.
	RequestAction(ctx context.Context, slug string) (*domain.Pet, error)
	// Activate reactivates a pet and clears any pending request.
	Activate(ctx context.Context, slug string) (*domain.Pet, error)
	// ActivateWithKey validates the emailed confirmation key first.
	ActivateWithKey(ctx context.Context, slug, key string) (*domain.Pet, error)
	// Deactivate runs the notification-gated deactivation.
	Deactivate(ctx context.Context, slug string) (*domain.Pet, error)
	// MarkPublished records external publication.
	MarkPublished(ctx context.Context, slug string) (*domain.Pet, error)
}

// PhotoService manages pet photo attachments.
type PhotoService interface {
	Add(ctx context.Context, petSlug, image string) (*domain.Photo, error)
	List(ctx context.Context, petSlug string) ([]domain.Photo, error)
	Delete(ctx context.Context, id uint) error
}

//
// DTOs
//

// RegisterPetRequest is the JSON payload for registering a pet.
type RegisterPetRequest struct {
	OwnerID        string `json:"owner_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Name           string `json:"name"     binding:"required,min=1,max=50" example:"Rex"`
	Description    string `json:"description" example:"Brown dog, answers to Rex"`
	CityID         *uint  `json:"city_id,omitempty" example:"1"`
	KindID         *uint  `json:"kind_id,omitempty" example:"2"`
	Status         string `json:"status" example:"MI"`
	Size           string `json:"size" example:"MD"`
	Sex            string `json:"sex" example:"MA"`
	ProfilePicture string `json:"profile_picture" example:"pet_profiles/rex.jpg"`
}

// ActivateRequest optionally carries the emailed confirmation key.
type ActivateRequest struct {
	Key string `json:"key" example:"3a5f0b8e6c1d2f4a9b8c7d6e5f4a3b2c1d0e9f8a"`
}

// AddPhotoRequest is the JSON payload for attaching a photo.
type AddPhotoRequest struct {
	Image string `json:"image" binding:"required" example:"pet_photos/rex-2.jpg"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPetsResponse wraps a page of pets and pagination information.
type ListPetsResponse struct {
	Pets       []domain.Pet `json:"pets"`
	Pagination Pagination   `json:"pagination"`
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the registry. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	petSvc   PetService
	photoSvc PhotoService
	kindSvc  KindService
	geoSvc   GeoService
	ownerSvc OwnerService
}

// New constructs a Handlers instance bound to the given services.
func New(petSvc PetService, photoSvc PhotoService, kindSvc KindService, geoSvc GeoService, ownerSvc OwnerService) *Handlers {
	return &Handlers{petSvc: petSvc, photoSvc: photoSvc, kindSvc: kindSvc, geoSvc: geoSvc, ownerSvc: ownerSvc}
}

// clampPagination parses and bounds page and page_size query params to
// sane defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failPet maps service-level pet errors to the HTTP envelope.
func failPet(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPetNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "pet not found")
	case errors.Is(err, services.ErrOwnerNotFound):
		fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "owner not found")
	case errors.Is(err, services.ErrCityNotFound):
		fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "city not found")
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidSize),
		errors.Is(err, services.ErrInvalidSex):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrBadRequestKey):
		fail(c, http.StatusForbidden, ErrCodeBadRequestKey, "request key mismatch")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// RegisterPet godoc
// @ID          registerPet
// @Summary     Register a new pet
// @Description Creates a pet record: active, unpublished, status Missing unless given.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterPetRequest  true  "Registration payload"
// @Success     201  {object}  domain.Pet
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown owner or city"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /pets [post]
func (h *Handlers) RegisterPet(c *gin.Context) {
	var req RegisterPetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pet, err := h.petSvc.Register(c.Request.Context(), services.RegisterInput{
		OwnerID:        req.OwnerID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		CityID:         req.CityID,
		KindID:         req.KindID,
		Status:         domain.Status(req.Status),
		Size:           domain.Size(req.Size),
		Sex:            domain.Sex(req.Sex),
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusCreated, pet)
}

// ListPets godoc
// @ID          listPets
// @Summary     List active pets (paginated)
// @Description Returns a page of active pets. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Pets
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page" minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListPetsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.petSvc.(*services.PetService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.PetsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"pets:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.petSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListPetsResponse{
		Pets: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetPet godoc
// @ID          getPet
// @Summary     Get one pet by slug
// @Tags        Pets
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"  example(rex-sao-paulo)
// @Success     200  {object} domain.Pet
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	pet, err := h.petSvc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// ListLostOrFound godoc
// @ID          listLostOrFound
// @Summary     List lost-and-found pets of one kind
// @Description Active pets with status Missing or Found. The kind is matched by numeric id when the identifier parses as an integer, otherwise by slug.
// @Tags        Pets
// @Produce     json
// @Param       kind  path  string  true  "Kind id or slug"  example(dog)
// @Success     200  {array}  domain.Pet
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/lost/{kind} [get]
func (h *Handlers) ListLostOrFound(c *gin.Context) {
	ref := domain.ParseKindRef(c.Param("kind"))
	pets, err := h.petSvc.LostOrFound(c.Request.Context(), ref)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// ListForAdoption godoc
// @ID          listForAdoption
// @Summary     List adoption-track pets of one kind
// @Description Active pets with status ForAdoption or Adopted, matched by kind id or slug.
// @Tags        Pets
// @Produce     json
// @Param       kind  path  string  true  "Kind id or slug"  example(2)
// @Success     200  {array}  domain.Pet
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/adoption/{kind} [get]
func (h *Handlers) ListForAdoption(c *gin.Context) {
	ref := domain.ParseKindRef(c.Param("kind"))
	pets, err := h.petSvc.ForAdoptionOrAdopted(c.Request.Context(), ref)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// ListUnpublished godoc
// @ID          listUnpublished
// @Summary     List pets awaiting external publication
// @Description Maintenance view; includes inactive pets.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {array}  domain.Pet
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/unpublished [get]
func (h *Handlers) ListUnpublished(c *gin.Context) {
	pets, err := h.petSvc.Unpublished(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// ListStale godoc
// @ID          listStale
// @Summary     List stale pets
// @Description Active unresolved pets unmodified past the configured threshold with no pending request.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {array}  domain.Pet
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/stale [get]
func (h *Handlers) ListStale(c *gin.Context) {
	pets, err := h.petSvc.Stale(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// ListExpired godoc
// @ID          listExpired
// @Summary     List expired pets
// @Description Pets whose pending removal request outlived the configured threshold.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {array}  domain.Pet
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/expired [get]
func (h *Handlers) ListExpired(c *gin.Context) {
	pets, err := h.petSvc.Expired(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, pets)
}

// ChangeStatus godoc
// @ID          changePetStatus
// @Summary     Toggle a pet's status
// @Description Missing becomes Found; anything else becomes Adopted.
// @Tags        Lifecycle
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Success     200  {object} domain.Pet
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/status [post]
func (h *Handlers) ChangeStatus(c *gin.Context) {
	pet, err := h.petSvc.ChangeStatus(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// RequestAction godoc
// @ID          requestPetAction
// @Summary     Start the removal-request workflow
// @Description Generates a fresh confirmation key and emails it to the owner. Always answers 202; when the notification fails, no request is recorded.
// @Tags        Lifecycle
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Success     202  {object} domain.Pet
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/request-action [post]
func (h *Handlers) RequestAction(c *gin.Context) {
	pet, err := h.petSvc.RequestAction(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusAccepted, pet)
}

// ActivatePet godoc
// @ID          activatePet
// @Summary     Reactivate a pet
// @Description Clears any pending removal request and sets the pet active. When a key is supplied it must match the outstanding request key.
// @Tags        Lifecycle
// @Accept      json
// @Produce     json
// @Param       slug  path  string  true   "Pet slug"
// @Param       body  body  handlers.ActivateRequest  false  "Optional confirmation key"
// @Success     200  {object} domain.Pet
// @Failure     403  {object} handlers.ErrorResponse "Key mismatch"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/activate [post]
func (h *Handlers) ActivatePet(c *gin.Context) {
	var req ActivateRequest
	// Body is optional; a missing or empty body means a direct activation.
	_ = c.ShouldBindJSON(&req)

	var (
		pet *domain.Pet
		err error
	)
	if req.Key != "" {
		pet, err = h.petSvc.ActivateWithKey(c.Request.Context(), c.Param("slug"), req.Key)
	} else {
		pet, err = h.petSvc.Activate(c.Request.Context(), c.Param("slug"))
	}
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// DeactivatePet godoc
// @ID          deactivatePet
// @Summary     Deactivate a pet
// @Description Emails the owner first; the pet is hidden from public queries only when the notification succeeds. Always answers 202.
// @Tags        Lifecycle
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Success     202  {object} domain.Pet
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/deactivate [post]
func (h *Handlers) DeactivatePet(c *gin.Context) {
	pet, err := h.petSvc.Deactivate(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusAccepted, pet)
}

// PublishPet godoc
// @ID          publishPet
// @Summary     Mark a pet as externally published
// @Tags        Lifecycle
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Success     200  {object} domain.Pet
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/publish [post]
func (h *Handlers) PublishPet(c *gin.Context) {
	pet, err := h.petSvc.MarkPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// AddPhoto godoc
// @ID          addPetPhoto
// @Summary     Attach a photo to a pet
// @Tags        Photos
// @Accept      json
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Param       body  body  handlers.AddPhotoRequest  true  "Photo payload"
// @Success     201  {object} domain.Photo
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/photos [post]
func (h *Handlers) AddPhoto(c *gin.Context) {
	var req AddPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image required")
		return
	}

	ph, err := h.photoSvc.Add(c.Request.Context(), c.Param("slug"), req.Image)
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusCreated, ph)
}

// ListPhotos godoc
// @ID          listPetPhotos
// @Summary     List the photos of a pet
// @Tags        Photos
// @Produce     json
// @Param       slug  path  string  true  "Pet slug"
// @Success     200  {array}  domain.Photo
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets/{slug}/photos [get]
func (h *Handlers) ListPhotos(c *gin.Context) {
	photos, err := h.photoSvc.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failPet(c, err)
		return
	}
	ok(c, http.StatusOK, photos)
}

// DeletePhoto godoc
// @ID          deletePetPhoto
// @Summary     Delete a photo
// @Tags        Photos
// @Param       id  path  int  true  "Photo id"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Photo not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /photos/{id} [delete]
func (h *Handlers) DeletePhoto(c *gin.Context) {
	id := utils.AtoiDefault(c.Param("id"), -1)
	if id < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "photo id must be an integer")
		return
	}
	if err := h.photoSvc.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrPhotoNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "photo not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
