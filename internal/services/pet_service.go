// Package services – PetService
//
// This file implements the PetService, the heart of the registry. It owns
// pet registration (slug assignment, enum validation, defaults), the
// filtered public views, and the lifecycle state machine: status change,
// the removal-request workflow, activation, and deactivation.
//
// The two email-gated transitions (request-action and deactivation) treat
// notification delivery as a precondition: state changes only when the
// notification attempt reports success, so an owner is never silently
// parted from an active register. A failed notification is not an error –
// the transition quietly does not happen and the pet keeps its prior
// observable state.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/textutil"
)

// Lifecycle transition metrics. Outcome labels are "ok" (transition
// persisted) and "aborted" (notification gate reported failure).
var (
	petStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_status_changes_total",
			Help: "Total number of pet status transitions, by resulting status code.",
		},
		[]string{"to"},
	)

	petRequestActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_request_actions_total",
			Help: "Total number of removal-request attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	petDeactivations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_deactivations_total",
			Help: "Total number of deactivation attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(petStatusChanges, petRequestActions, petDeactivations)
}

// PetRepo defines the repository contract required by PetService.
type PetRepo interface {
	// CreatePet inserts a new pet row, generating the UUID when unset.
	CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error

	// GetPetBySlug fetches one pet by slug, active or not.
	GetPetBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Pet, error)

	// SlugExists reports whether a slug is already taken.
	SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error)

	// SavePet persists the pet; touchModified=false must leave the
	// modification timestamp untouched.
	SavePet(ctx context.Context, db *gorm.DB, p *domain.Pet, touchModified bool) error

	// FilterByKind returns active pets of one kind.
	FilterByKind(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error)

	// ListLostOrFound returns active pets of one kind on the lost-and-found track.
	ListLostOrFound(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error)

	// ListForAdoptionOrAdopted returns active pets of one kind on the adoption track.
	ListForAdoptionOrAdopted(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error)

	// ListUnpublished returns all pets with published=false, active or not.
	ListUnpublished(ctx context.Context, db *gorm.DB) ([]domain.Pet, error)

	// ListStale returns unresolved active pets unmodified for staleDays days
	// with no outstanding request.
	ListStale(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error)

	// ListExpired returns pets whose request went unanswered for staleDays days.
	ListExpired(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error)

	// CountActives and ListActivesPage back the public paginated listing.
	CountActives(ctx context.Context, db *gorm.DB) (int64, error)
	ListActivesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Pet, error)

	// GetOwner verifies the owning profile exists at registration time.
	GetOwner(ctx context.Context, db *gorm.DB, id string) (*domain.Owner, error)

	// GetCity resolves the optional city reference for slug composition.
	GetCity(ctx context.Context, db *gorm.DB, id uint) (*domain.City, error)
}

// Notifier is the external notification collaborator consumed by the
// lifecycle. Both calls report bare success/failure; no retry, no error
// detail surfaced.
type Notifier interface {
	SendRequestActionEmail(ctx context.Context, pet *domain.Pet) bool
	SendDeactivateEmail(ctx context.Context, pet *domain.Pet) bool
}

// PetService provides pet registration, the filtered views, and the
// lifecycle state machine.
type PetService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the pet repository used by this service.
	Repo PetRepo
	// Notifier gates the request-action and deactivation transitions.
	Notifier Notifier
	// DaysToStale is the configured staleness threshold, read at call
	// time by the stale/expired views.
	DaysToStale int

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

// NewPetService constructs a PetService.
func NewPetService(db *gorm.DB, r PetRepo, n Notifier, daysToStale int) *PetService {
	return &PetService{DB: db, Repo: r, Notifier: n, DaysToStale: daysToStale}
}

func (s *PetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// RegisterInput carries the fields accepted at pet registration.
type RegisterInput struct {
	OwnerID        string
	Name           string
	Description    string
	CityID         *uint
	KindID         *uint
	Status         domain.Status
	Size           domain.Size
	Sex            domain.Sex
	ProfilePicture string
}

// Register creates a pet record: active, unpublished, and Missing unless
// another status is given. The slug derives from the name plus the city
// name when one is referenced; collisions get a numeric suffix.
func (s *PetService) Register(ctx context.Context, in RegisterInput) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(
			attribute.String("owner.id", in.OwnerID),
			attribute.String("pet.status", string(in.Status)),
		),
	)
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if in.Status == "" {
		in.Status = domain.StatusMissing
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !in.Size.Valid() {
		return nil, ErrInvalidSize
	}
	if !in.Sex.Valid() {
		return nil, ErrInvalidSex
	}

	if _, err := s.Repo.GetOwner(ctx, s.DB, in.OwnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	slugBase := name
	if in.CityID != nil {
		city, err := s.Repo.GetCity(ctx, s.DB, *in.CityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCityNotFound
			}
			return nil, err
		}
		slugBase = name + " " + city.Name
	}
	slug, err := s.uniqueSlug(ctx, textutil.Slugify(slugBase))
	if err != nil {
		return nil, err
	}

	p := &domain.Pet{
		OwnerID:        in.OwnerID,
		Name:           name,
		Description:    in.Description,
		CityID:         in.CityID,
		KindID:         in.KindID,
		Status:         in.Status,
		Size:           in.Size,
		Sex:            in.Sex,
		ProfilePicture: in.ProfilePicture,
		Published:      false,
		Active:         true,
	}
	p.Slug = slug
	if err := s.Repo.CreatePet(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// uniqueSlug appends -2, -3, … until the candidate is free.
func (s *PetService) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "pet"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.Repo.SlugExists(ctx, s.DB, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Get fetches one pet by slug, active or not.
func (s *PetService) Get(ctx context.Context, slug string) (*domain.Pet, error) {
	p, err := s.Repo.GetPetBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListPage returns a page of active pets and the total count.
func (s *PetService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Pet, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountActives(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Pet{}, 0, nil
	}

	items, err := s.Repo.ListActivesPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// LostOrFound returns active pets of one kind on the lost-and-found track.
func (s *PetService) LostOrFound(ctx context.Context, ref domain.KindRef) ([]domain.Pet, error) {
	return s.Repo.ListLostOrFound(ctx, s.DB, ref)
}

// ForAdoptionOrAdopted returns active pets of one kind on the adoption track.
func (s *PetService) ForAdoptionOrAdopted(ctx context.Context, ref domain.KindRef) ([]domain.Pet, error) {
	return s.Repo.ListForAdoptionOrAdopted(ctx, s.DB, ref)
}

// Unpublished returns every pet awaiting external publication.
func (s *PetService) Unpublished(ctx context.Context) ([]domain.Pet, error) {
	return s.Repo.ListUnpublished(ctx, s.DB)
}

// Stale returns request-action candidates using the configured threshold.
func (s *PetService) Stale(ctx context.Context) ([]domain.Pet, error) {
	return s.Repo.ListStale(ctx, s.DB, s.DaysToStale)
}

// Expired returns pets whose removal request outlived the threshold.
func (s *PetService) Expired(ctx context.Context) ([]domain.Pet, error) {
	return s.Repo.ListExpired(ctx, s.DB, s.DaysToStale)
}

// ChangeStatus toggles the pet's status: Missing becomes Found, anything
// else becomes Adopted. Calling it on a ForAdoption pet therefore also
// yields Adopted, and on an Adopted pet it is a same-value no-op; the
// collapse is long-standing observed behavior and is kept as is.
func (s *PetService) ChangeStatus(ctx context.Context, slug string) (*domain.Pet, error) {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	if p.Status == domain.StatusMissing {
		p.Status = domain.StatusFound
	} else {
		p.Status = domain.StatusAdopted
	}
	if err := s.Repo.SavePet(ctx, s.DB, p, true); err != nil {
		return nil, err
	}
	petStatusChanges.WithLabelValues(string(p.Status)).Inc()
	return p, nil
}

// RequestAction runs the removal-request workflow: generate a fresh
// confirmation key, ask the notifier to deliver it, and only then record
// the request. The key is a 40-char hex SHA-1 of a random seed plus the
// pet's name, regenerated on every attempt.
//
// When the notifier reports failure the method returns without persisting
// anything: the in-memory key mutation is simply dropped with the entity,
// and request_sent stays unset in storage. On success request_sent is set
// to the current time and the row is written without refreshing the
// modification timestamp, so the staleness view is not disturbed.
func (s *PetService) RequestAction(ctx context.Context, slug string) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "RequestAction",
		trace.WithAttributes(attribute.String("pet.slug", slug)),
	)
	defer span.End()

	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	p.RequestKey = newRequestKey(p.Name)

	if !s.Notifier.SendRequestActionEmail(ctx, p) {
		petRequestActions.WithLabelValues("aborted").Inc()
		return p, nil
	}

	t := s.now()
	p.RequestSent = &t
	if err := s.Repo.SavePet(ctx, s.DB, p, false); err != nil {
		return nil, err
	}
	petRequestActions.WithLabelValues("ok").Inc()
	return p, nil
}

// Activate clears any pending request (request_sent and request_key) and
// marks the pet active again. This is a real modification: the timestamp
// is refreshed so the register stops counting as stale. Idempotent.
func (s *PetService) Activate(ctx context.Context, slug string) (*domain.Pet, error) {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	p.RequestSent = nil
	p.RequestKey = ""
	p.Active = true
	if err := s.Repo.SavePet(ctx, s.DB, p, true); err != nil {
		return nil, err
	}
	return p, nil
}

// ActivateWithKey validates the emailed confirmation key before
// activating. A missing outstanding key or a mismatch yields
// ErrBadRequestKey and no state change.
func (s *PetService) ActivateWithKey(ctx context.Context, slug, key string) (*domain.Pet, error) {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p.RequestKey == "" || p.RequestKey != key {
		return nil, ErrBadRequestKey
	}
	return s.Activate(ctx, slug)
}

// Deactivate notifies the owner first and flips the active flag only when
// the notification attempt reports success, writing without refreshing
// the modification timestamp. A failed notification leaves the pet
// indistinguishable from untouched.
func (s *PetService) Deactivate(ctx context.Context, slug string) (*domain.Pet, error) {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !s.Notifier.SendDeactivateEmail(ctx, p) {
		petDeactivations.WithLabelValues("aborted").Inc()
		return p, nil
	}

	p.Active = false
	if err := s.Repo.SavePet(ctx, s.DB, p, false); err != nil {
		return nil, err
	}
	petDeactivations.WithLabelValues("ok").Inc()
	return p, nil
}

// MarkPublished records that the register was published externally.
func (s *PetService) MarkPublished(ctx context.Context, slug string) (*domain.Pet, error) {
	p, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	p.Published = true
	if err := s.Repo.SavePet(ctx, s.DB, p, true); err != nil {
		return nil, err
	}
	return p, nil
}

// requestKeyAlphabet matches the seed alphabet of the confirmation key.
const requestKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newRequestKey derives a 40-char hex digest from a 5-char random seed
// concatenated with the pet's name.
func newRequestKey(name string) string {
	seed := make([]byte, 5)
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		seed[i] = requestKeyAlphabet[int(b)%len(requestKeyAlphabet)]
	}
	sum := sha1.Sum(append(seed, []byte(name)...))
	return hex.EncodeToString(sum[:])
}
