package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/repo"
)

// OwnerService is minimal scaffolding around owner profiles; the registry
// only needs them to exist and to carry the notification email.
type OwnerService struct {
	DB *gorm.DB
}

// Create registers an owner profile.
func (s *OwnerService) Create(ctx context.Context, name, email string) (*domain.Owner, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrOwnerEmailRequired
	}
	o := &domain.Owner{Name: strings.TrimSpace(name), Email: email}
	if err := repo.CreateOwner(ctx, s.DB, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get fetches an owner by id.
func (s *OwnerService) Get(ctx context.Context, id string) (*domain.Owner, error) {
	o, err := repo.GetOwner(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return o, nil
}
