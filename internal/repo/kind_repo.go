// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the Kind repository, including the
// per-kind aggregate counters that power the category sidebars.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
)

// KindCount is one row of the per-kind aggregate: a kind plus the number
// of active pets currently matching the queried status set.
type KindCount struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	NumPets int64  `json:"num_pets"`
}

// CreateKind inserts a new kind; the slug is derived from the name by a
// model hook when not set.
func CreateKind(ctx context.Context, db *gorm.DB, k *domain.Kind) error {
	return db.WithContext(ctx).Create(k).Error
}

// ListKinds returns all kinds ordered by id.
func ListKinds(ctx context.Context, db *gorm.DB) ([]domain.Kind, error) {
	var out []domain.Kind
	err := db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// GetKindBySlug fetches one kind by slug or ErrNotFound.
func GetKindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Kind, error) {
	var k domain.Kind
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// CountPets joins kinds against active pets in the given status set and
// returns per-kind counts ordered by kind id. Inner-join semantics: kinds
// with no matching pets are omitted, never zero-filled.
func CountPets(ctx context.Context, db *gorm.DB, statuses []domain.Status) ([]KindCount, error) {
	var out []KindCount
	err := db.WithContext(ctx).
		Table("kinds").
		Select("kinds.id, kinds.name, kinds.slug, COUNT(pets.id) AS num_pets").
		Joins("JOIN pets ON pets.kind_id = kinds.id").
		Where("pets.status IN ? AND pets.active = ?", statuses, true).
		Group("kinds.id").
		Order("kinds.id").
		Scan(&out).Error
	return out, err
}

// LostKinds counts active pets per kind on the lost-and-found track.
func LostKinds(ctx context.Context, db *gorm.DB) ([]KindCount, error) {
	return CountPets(ctx, db, domain.LostStatuses())
}

// AdoptionKinds counts active pets per kind on the adoption track.
func AdoptionKinds(ctx context.Context, db *gorm.DB) ([]KindCount, error) {
	return CountPets(ctx, db, domain.AdoptionStatuses())
}
