package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
)

// ErrImageRequired is returned when a photo is attached with no image reference.
var ErrImageRequired = errors.New("photo image is required")

// ErrPhotoNotFound indicates that the requested photo does not exist.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoService manages the image attachments of a pet. Photos are pure
// attachments: they exist, they can be listed, they can be deleted.
type PhotoService struct {
	DB *gorm.DB
}

// Add attaches an image reference to the pet identified by slug.
func (s *PhotoService) Add(ctx context.Context, petSlug, image string) (*domain.Photo, error) {
	if strings.TrimSpace(image) == "" {
		return nil, ErrImageRequired
	}
	p, err := repo.GetPetBySlug(ctx, s.DB, petSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return repo.AddPhoto(ctx, s.DB, p.ID, image)
}

// List returns the photos of the pet identified by slug.
func (s *PhotoService) List(ctx context.Context, petSlug string) ([]domain.Photo, error) {
	p, err := repo.GetPetBySlug(ctx, s.DB, petSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return repo.ListPhotos(ctx, s.DB, p.ID)
}

// Delete removes one photo by id.
func (s *PhotoService) Delete(ctx context.Context, id uint) error {
	err := repo.DeletePhoto(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPhotoNotFound
	}
	return err
}
