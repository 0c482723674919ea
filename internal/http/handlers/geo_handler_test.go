package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/services"
)

func newGeoHandlers(db *gorm.DB) *Handlers {
	return New(stubPetSvc{}, stubPhotoSvcPet{}, stubKindSvcPet{}, &services.GeoService{DB: db}, stubOwnerSvcPet{})
}

func TestCreateState_BadJSON_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPetDB(t)
	h := newGeoHandlers(db)
	r := gin.New()
	r.POST("/states", h.CreateState)

	// Bad JSON -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/states", bytes.NewBufferString("{bad"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Missing abbr -> 400 (binding)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/states", bytes.NewBufferString(`{"code":35,"name":"São Paulo"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing abbr -> %d", w.Code)
	}

	// Success -> 201 with uppercased abbr
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/states", bytes.NewBufferString(`{"code":35,"name":"São Paulo","abbr":"sp"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var out domain.State
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.ID == 0 || out.Abbr != "SP" {
		t.Fatalf("unexpected state: %#v", out)
	}
}

func TestCities_Create_ListByState_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPetDB(t)

	st := &domain.State{Code: 35, Name: "São Paulo", Abbr: "SP"}
	if err := db.Create(st).Error; err != nil {
		t.Fatalf("seed state: %v", err)
	}

	h := newGeoHandlers(db)
	r := gin.New()
	r.POST("/cities", h.CreateCity)
	r.GET("/cities", h.SearchCities)
	r.GET("/states", h.ListStates)
	r.GET("/states/:id/cities", h.ListCities)

	// Create two cities; the search key is normalized on save
	for _, body := range []string{
		fmt.Sprintf(`{"state_id":%d,"code":3550308,"name":"São Paulo"}`, st.ID),
		fmt.Sprintf(`{"state_id":%d,"code":3543402,"name":"Ribeirão Preto"}`, st.ID),
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cities", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create city -> %d body=%s", w.Code, w.Body.String())
		}
	}

	// City body carries the computed search key
	{
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cities",
			bytes.NewBufferString(fmt.Sprintf(`{"state_id":%d,"code":3530607,"name":"Maringá"}`, st.ID)))
		r.ServeHTTP(w, req)
		var out domain.City
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.SearchName != "maringa" {
			t.Fatalf("search_name = %q", out.SearchName)
		}
	}

	// Bad JSON -> 400
	{
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cities", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// States list includes the seeded state
	{
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/states", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("states -> %d", w.Code)
		}
		var states []domain.State
		if err := json.Unmarshal(w.Body.Bytes(), &states); err != nil || len(states) != 1 {
			t.Fatalf("states body = %s (%v)", w.Body.String(), err)
		}
	}

	// Cities of the state, and the non-integer id guard
	{
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/states/%d/cities", st.ID), nil))
		if w.Code != http.StatusOK {
			t.Fatalf("cities -> %d", w.Code)
		}
		var cities []domain.City
		if err := json.Unmarshal(w.Body.Bytes(), &cities); err != nil || len(cities) != 3 {
			t.Fatalf("cities body = %s (%v)", w.Body.String(), err)
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/states/abc/cities", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad state id -> %d", w.Code)
		}
	}

	// Diacritic-insensitive prefix search
	{
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cities?q=SÃO", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("search -> %d", w.Code)
		}
		var hits []domain.City
		if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
			t.Fatalf("search json: %v", err)
		}
		if len(hits) != 1 || hits[0].Name != "São Paulo" {
			t.Fatalf("search hits = %#v", hits)
		}

		// Blank query matches nothing
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cities?q=", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("blank search -> %d", w.Code)
		}
		if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil || len(hits) != 0 {
			t.Fatalf("blank search hits = %s (%v)", w.Body.String(), err)
		}
	}
}
