// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the Owner and Photo repositories.
// Both are thin scaffolding around the Pet aggregate: owners receive the
// lifecycle notifications, photos are pure attachments.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
)

// CreateOwner inserts a new owner profile with a generated UUID.
func CreateOwner(ctx context.Context, db *gorm.DB, o *domain.Owner) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(o).Error
}

// GetOwner fetches an owner by id or ErrNotFound.
func GetOwner(ctx context.Context, db *gorm.DB, id string) (*domain.Owner, error) {
	var o domain.Owner
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// AddPhoto attaches an image record to a pet.
func AddPhoto(ctx context.Context, db *gorm.DB, petID, image string) (*domain.Photo, error) {
	ph := &domain.Photo{
		PetID:     petID,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(ph).Error; err != nil {
		return nil, err
	}
	return ph, nil
}

// ListPhotos returns all photos of one pet, oldest first.
func ListPhotos(ctx context.Context, db *gorm.DB, petID string) ([]domain.Photo, error) {
	var out []domain.Photo
	err := db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

// DeletePhoto removes one photo by id. Returns ErrNotFound when the row
// does not exist.
func DeletePhoto(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Photo{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
