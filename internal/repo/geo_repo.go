// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repositories for the geography
// reference data (states and cities). Geography records have no lifecycle;
// they exist for lookup and filtering only.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/textutil"
)

// CreateState inserts a new state row.
func CreateState(ctx context.Context, db *gorm.DB, s *domain.State) error {
	return db.WithContext(ctx).Create(s).Error
}

// ListStates returns all states ordered by name.
func ListStates(ctx context.Context, db *gorm.DB) ([]domain.State, error) {
	var out []domain.State
	err := db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// SaveCity creates or updates a city. The BeforeSave hook recomputes the
// normalized search key on every call, so renames can never leave a stale
// key behind.
func SaveCity(ctx context.Context, db *gorm.DB, c *domain.City) error {
	return db.WithContext(ctx).Save(c).Error
}

// ListCitiesByState returns the cities of one state ordered by name.
func ListCitiesByState(ctx context.Context, db *gorm.DB, stateID uint) ([]domain.City, error) {
	var out []domain.City
	err := db.WithContext(ctx).
		Where("state_id = ?", stateID).
		Order("name").
		Find(&out).Error
	return out, err
}

// SearchCities matches cities by the normalized search key, so the query
// is case- and diacritic-insensitive ("São" finds "sao" and vice versa).
// Prefix matching keeps the indexed column usable.
func SearchCities(ctx context.Context, db *gorm.DB, q string) ([]domain.City, error) {
	key := textutil.ClearText(q)
	if key == "" {
		return []domain.City{}, nil
	}
	var out []domain.City
	err := db.WithContext(ctx).
		Where("search_name LIKE ?", key+"%").
		Order("name").
		Find(&out).Error
	return out, err
}

// GetCity fetches one city by id (with its state) or ErrNotFound.
func GetCity(ctx context.Context, db *gorm.DB, id uint) (*domain.City, error) {
	var c domain.City
	if err := db.WithContext(ctx).Preload("State").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
