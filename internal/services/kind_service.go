// Package services – KindService and GeoService
//
// Kinds and geography are passive reference data; the services here are
// thin pass-throughs over the repositories, kept so handlers depend on
// interfaces rather than repo free functions.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
)

// KindService exposes the kind catalog and its per-status-track counters.
type KindService struct {
	// DB is the database handle used for all kind operations.
	DB *gorm.DB
}

// Create inserts a new kind; the slug is derived from the name.
func (s *KindService) Create(ctx context.Context, name string) (*domain.Kind, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrKindNameRequired
	}
	k := &domain.Kind{Name: name}
	if err := repo.CreateKind(ctx, s.DB, k); err != nil {
		return nil, err
	}
	return k, nil
}

// List returns the whole kind catalog.
func (s *KindService) List(ctx context.Context) ([]domain.Kind, error) {
	return repo.ListKinds(ctx, s.DB)
}

// LostKinds counts active lost-and-found pets per kind. Kinds with no
// matching pets are omitted.
func (s *KindService) LostKinds(ctx context.Context) ([]repo.KindCount, error) {
	return repo.LostKinds(ctx, s.DB)
}

// AdoptionKinds counts active adoption-track pets per kind.
func (s *KindService) AdoptionKinds(ctx context.Context) ([]repo.KindCount, error) {
	return repo.AdoptionKinds(ctx, s.DB)
}

// GeoService exposes geography reference data: states and searchable cities.
type GeoService struct {
	// DB is the database handle used for all geography operations.
	DB *gorm.DB
}

// States lists all states.
func (s *GeoService) States(ctx context.Context) ([]domain.State, error) {
	return repo.ListStates(ctx, s.DB)
}

// CreateState inserts a state record.
func (s *GeoService) CreateState(ctx context.Context, st *domain.State) error {
	return repo.CreateState(ctx, s.DB, st)
}

// CitiesByState lists the cities of one state.
func (s *GeoService) CitiesByState(ctx context.Context, stateID uint) ([]domain.City, error) {
	return repo.ListCitiesByState(ctx, s.DB, stateID)
}

// SaveCity creates or updates a city; the search key is recomputed on save.
func (s *GeoService) SaveCity(ctx context.Context, c *domain.City) error {
	return repo.SaveCity(ctx, s.DB, c)
}

// SearchCities finds cities by diacritic-insensitive name prefix.
func (s *GeoService) SearchCities(ctx context.Context, q string) ([]domain.City, error) {
	return repo.SearchCities(ctx, s.DB, q)
}
