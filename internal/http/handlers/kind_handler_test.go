package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
	"github.com/meupet/go-pet-backend/internal/services"
)

func newKindHandlers(db *gorm.DB) *Handlers {
	return New(stubPetSvc{}, stubPhotoSvcPet{}, &services.KindService{DB: db}, stubGeoSvcPet{}, stubOwnerSvcPet{})
}

func seedKindPet(t *testing.T, db *gorm.DB, kindID uint, status domain.Status, active bool) {
	t.Helper()
	p := &domain.Pet{
		ID:      uuid.NewString(),
		OwnerID: uuid.NewString(),
		Name:    "pet",
		Slug:    "pet-" + uuid.NewString(),
		KindID:  &kindID,
		Status:  status,
		Active:  active,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed pet: %v", err)
	}
}

// ---------- CreateKind ----------

func TestCreateKind_BadJSON_Success_Duplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPetDB(t)
	h := newKindHandlers(db)
	r := gin.New()
	r.POST("/kinds", h.CreateKind)

	// Bad JSON -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/kinds", bytes.NewBufferString("{bad"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Blank name -> 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/kinds", bytes.NewBufferString(`{"name":"   "}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank name -> %d", w.Code)
	}

	// Success -> 201 with derived slug
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/kinds", bytes.NewBufferString(`{"name":"Pássaro"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var out domain.Kind
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Name != "Pássaro" || out.Slug != "passaro" {
		t.Fatalf("unexpected kind: %#v", out)
	}

	// Same name again -> 409 conflict
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/kinds", bytes.NewBufferString(`{"name":"Pássaro"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate -> %d body=%s", w.Code, w.Body.String())
	}
	if er := decodeErr(t, w.Body.Bytes()); er.Code != ErrCodeConflict {
		t.Fatalf("duplicate code = %q", er.Code)
	}
}

// ---------- ListKinds + per-track counters ----------

func TestListKinds_And_TrackCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPetDB(t)

	dog := &domain.Kind{Name: "Dog"}
	cat := &domain.Kind{Name: "Cat"}
	for _, k := range []*domain.Kind{dog, cat} {
		if err := db.Create(k).Error; err != nil {
			t.Fatalf("seed kind: %v", err)
		}
	}
	// Two lost-track dogs, one of them inactive; one adoption-track cat.
	seedKindPet(t, db, dog.ID, domain.StatusMissing, true)
	seedKindPet(t, db, dog.ID, domain.StatusFound, false)
	seedKindPet(t, db, cat.ID, domain.StatusForAdoption, true)

	h := newKindHandlers(db)
	r := gin.New()
	r.GET("/kinds", h.ListKinds)
	r.GET("/kinds/lost", h.ListLostKinds)
	r.GET("/kinds/adoption", h.ListAdoptionKinds)

	// Full catalog
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kinds", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var kinds []domain.Kind
	if err := json.Unmarshal(w.Body.Bytes(), &kinds); err != nil || len(kinds) != 2 {
		t.Fatalf("list body = %s (%v)", w.Body.String(), err)
	}

	// Lost track: only the active Dog counts, Cat omitted
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kinds/lost", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("lost -> %d", w.Code)
	}
	var lost []repo.KindCount
	if err := json.Unmarshal(w.Body.Bytes(), &lost); err != nil {
		t.Fatalf("lost json: %v", err)
	}
	if len(lost) != 1 || lost[0].Slug != "dog" || lost[0].NumPets != 1 {
		t.Fatalf("lost counts = %#v", lost)
	}

	// Adoption track: only Cat
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kinds/adoption", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("adoption -> %d", w.Code)
	}
	var adoption []repo.KindCount
	if err := json.Unmarshal(w.Body.Bytes(), &adoption); err != nil {
		t.Fatalf("adoption json: %v", err)
	}
	if len(adoption) != 1 || adoption[0].Slug != "cat" || adoption[0].NumPets != 1 {
		t.Fatalf("adoption counts = %#v", adoption)
	}
}

// ---------- isUniqueViolation ----------

func Test_isUniqueViolation(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"UNIQUE constraint failed: kinds.name", true},
		{"duplicate key value violates unique constraint", true},
		{"record not found", false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(errString(tc.msg)); got != tc.want {
			t.Fatalf("%q -> %v", tc.msg, got)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
