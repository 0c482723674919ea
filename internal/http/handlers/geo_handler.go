// Geography HTTP handlers: states and searchable cities. Reference data
// only; no lifecycle.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/utils"
)

// GeoService defines the geography lookups consumed by HTTP handlers.
type GeoService interface {
	States(ctx context.Context) ([]domain.State, error)
	CreateState(ctx context.Context, st *domain.State) error
	CitiesByState(ctx context.Context, stateID uint) ([]domain.City, error)
	SaveCity(ctx context.Context, c *domain.City) error
	SearchCities(ctx context.Context, q string) ([]domain.City, error)
}

// CreateStateRequest is the JSON payload for creating a state.
type CreateStateRequest struct {
	Code int    `json:"code" binding:"required" example:"35"`
	Name string `json:"name" binding:"required,min=1,max=50" example:"São Paulo"`
	Abbr string `json:"abbr" binding:"required,len=2" example:"SP"`
}

// CreateCityRequest is the JSON payload for creating a city.
type CreateCityRequest struct {
	StateID uint   `json:"state_id" binding:"required" example:"1"`
	Code    int    `json:"code" binding:"required" example:"3550308"`
	Name    string `json:"name" binding:"required,min=1,max=80" example:"São Paulo"`
}

// ListStates godoc
// @ID          listStates
// @Summary     List all states
// @Tags        Geography
// @Produce     json
// @Success     200  {array}  domain.State
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /states [get]
func (h *Handlers) ListStates(c *gin.Context) {
	states, err := h.geoSvc.States(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, states)
}

// CreateState godoc
// @ID          createState
// @Summary     Create a state
// @Tags        Geography
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateStateRequest  true  "State payload"
// @Success     201  {object} domain.State
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /states [post]
func (h *Handlers) CreateState(c *gin.Context) {
	var req CreateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code, name and 2-letter abbr required")
		return
	}

	st := &domain.State{Code: req.Code, Name: req.Name, Abbr: strings.ToUpper(req.Abbr)}
	if err := h.geoSvc.CreateState(c.Request.Context(), st); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, st)
}

// ListCities godoc
// @ID          listCities
// @Summary     List the cities of one state
// @Tags        Geography
// @Produce     json
// @Param       id  path  int  true  "State id"
// @Success     200  {array}  domain.City
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /states/{id}/cities [get]
func (h *Handlers) ListCities(c *gin.Context) {
	id := utils.AtoiDefault(c.Param("id"), -1)
	if id < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "state id must be an integer")
		return
	}
	cities, err := h.geoSvc.CitiesByState(c.Request.Context(), uint(id))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, cities)
}

// CreateCity godoc
// @ID          createCity
// @Summary     Create a city
// @Description The normalized search key is computed from the name on save.
// @Tags        Geography
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateCityRequest  true  "City payload"
// @Success     201  {object} domain.City
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cities [post]
func (h *Handlers) CreateCity(c *gin.Context) {
	var req CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "state_id, code and name required")
		return
	}

	city := &domain.City{StateID: req.StateID, Code: req.Code, Name: req.Name}
	if err := h.geoSvc.SaveCity(c.Request.Context(), city); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, city)
}

// SearchCities godoc
// @ID          searchCities
// @Summary     Search cities by name
// @Description Diacritic- and case-insensitive prefix search on the normalized key.
// @Tags        Geography
// @Produce     json
// @Param       q  query  string  true  "Name prefix"  example(sao)
// @Success     200  {array}  domain.City
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cities [get]
func (h *Handlers) SearchCities(c *gin.Context) {
	cities, err := h.geoSvc.SearchCities(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, cities)
}
