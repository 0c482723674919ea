// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the Pet repository: CRUD persistence
// plus the filtered views the registry is built around (kind filters,
// status tracks, staleness and expiration).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Query semantics:
//   - An empty result is a valid outcome and never an error; list functions
//     return an empty slice and a nil error.
//   - Public views always apply the Actives scope first; only the
//     unpublished and expired views look past the active flag.
//   - The lost-and-found track (Missing/Found) and the adoption track
//     (ForAdoption/Adopted) are disjoint: a query for one never returns
//     pets from the other.
//
// Error semantics:
//   - When a pet is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Actives is the reusable scope restricting a query to active pets.
// Every public view is built on top of it.
func Actives(db *gorm.DB) *gorm.DB {
	return db.Where("pets.active = ?", true)
}

// statusIn restricts a query to the given status set.
func statusIn(statuses []domain.Status) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("pets.status IN ?", statuses)
	}
}

// byKind restricts a query to one kind, by numeric id or by slug depending
// on how the reference was parsed at the boundary.
func byKind(ref domain.KindRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ref.Numeric {
			return db.Where("pets.kind_id = ?", ref.ID)
		}
		return db.Joins("JOIN kinds ON kinds.id = pets.kind_id").
			Where("kinds.slug = ?", ref.Slug)
	}
}

// CreatePet inserts a new Pet row. The pet ID is a randomly generated UUID
// when not preset, and CreatedAt is set to UTC.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPet fetches a single pet by its primary key, active or not.
// Returns ErrNotFound when missing.
func GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).
		Preload("City").Preload("Kind").
		Where("pets.id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPetBySlug fetches a single pet by its unique slug, active or not.
// Returns ErrNotFound when missing.
func GetPetBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).
		Preload("City").Preload("Kind").
		Where("pets.slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SlugExists reports whether a pet already uses the given slug.
func SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Pet{}).
		Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

// SavePet persists the pet's current field values. When touchModified is
// true the row is saved normally and GORM refreshes UpdatedAt; when false
// the lifecycle columns are written with UpdateColumns, which leaves the
// modification timestamp exactly as it was. The request-action and
// deactivation flows depend on the latter so staleness checks keep working.
func SavePet(ctx context.Context, db *gorm.DB, p *domain.Pet, touchModified bool) error {
	if touchModified {
		return db.WithContext(ctx).Save(p).Error
	}
	return db.WithContext(ctx).Model(&domain.Pet{}).
		Where("id = ?", p.ID).
		UpdateColumns(map[string]any{
			"status":       p.Status,
			"active":       p.Active,
			"published":    p.Published,
			"request_sent": p.RequestSent,
			"request_key":  p.RequestKey,
		}).Error
}

// FilterByKind returns active pets of one kind. The reference decides the
// match column: numeric id or kind slug. City associations are preloaded
// since every caller renders the location.
func FilterByKind(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Scopes(Actives, byKind(ref)).
		Preload("City").
		Order("pets.created_at desc").
		Find(&out).Error
	return out, err
}

// ListLostOrFound returns active pets of one kind on the lost-and-found
// track (Missing or Found).
func ListLostOrFound(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Scopes(Actives, byKind(ref), statusIn(domain.LostStatuses())).
		Preload("City").
		Order("pets.created_at desc").
		Find(&out).Error
	return out, err
}

// ListForAdoptionOrAdopted returns active pets of one kind on the adoption
// track (ForAdoption or Adopted).
func ListForAdoptionOrAdopted(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Scopes(Actives, byKind(ref), statusIn(domain.AdoptionStatuses())).
		Preload("City").
		Order("pets.created_at desc").
		Find(&out).Error
	return out, err
}

// ListUnpublished returns every pet not yet externally published,
// deliberately including inactive ones.
func ListUnpublished(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListStale returns active pets that were not modified in the last
// staleDays days, have no outstanding request, and sit in an unresolved
// status (Missing or ForAdoption). These are candidates for a
// request-action email.
func ListStale(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -staleDays)
	var out []domain.Pet
	err := db.WithContext(ctx).
		Scopes(Actives, statusIn([]domain.Status{domain.StatusMissing, domain.StatusForAdoption})).
		Where("request_sent IS NULL").
		Where("updated_at < ?", cutoff).
		Order("updated_at asc").
		Find(&out).Error
	return out, err
}

// ListExpired returns pets whose removal request went unanswered for more
// than staleDays days, regardless of the active flag.
func ListExpired(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -staleDays)
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("request_sent IS NOT NULL AND request_sent < ?", cutoff).
		Order("request_sent asc").
		Find(&out).Error
	return out, err
}

// CountActives returns the total number of active pets, for pagination.
func CountActives(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Pet{}).
		Scopes(Actives).
		Count(&total).Error
	return total, err
}

// ListActivesPage returns a page of active pets ordered by creation time
// descending. The caller computes offset and limit.
func ListActivesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Scopes(Actives).
		Preload("City").Preload("Kind").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PetsStats returns aggregate metadata over active pets: row count and the
// greatest UpdatedAt. The HTTP layer derives weak ETags from it. When there
// are no active pets the count is 0 and maxUpdatedAt is nil.
func PetsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Pet{}).Scopes(Actives)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
