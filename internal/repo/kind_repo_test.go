package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/meupet/go-pet-backend/internal/domain"
)

func TestCreateKind_DerivesSlug(t *testing.T) {
	db := newPetRepoDB(t)

	k := &domain.Kind{Name: "Pássaro"}
	if err := CreateKind(context.Background(), db, k); err != nil {
		t.Fatalf("CreateKind: %v", err)
	}
	if k.Slug != "passaro" {
		t.Fatalf("expected diacritic-free slug, got %q", k.Slug)
	}

	got, err := GetKindBySlug(context.Background(), db, "passaro")
	if err != nil {
		t.Fatalf("GetKindBySlug: %v", err)
	}
	if got.ID != k.ID || got.Name != "Pássaro" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetKindBySlug_NotFound(t *testing.T) {
	db := newPetRepoDB(t)
	if _, err := GetKindBySlug(context.Background(), db, "unicorn"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListKinds_OrderedByID(t *testing.T) {
	db := newPetRepoDB(t)
	seedKind(t, db, "Dog")
	seedKind(t, db, "Cat")
	seedKind(t, db, "Bird")

	out, err := ListKinds(context.Background(), db)
	if err != nil {
		t.Fatalf("ListKinds: %v", err)
	}
	if len(out) != 3 || out[0].Name != "Dog" || out[2].Name != "Bird" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

func TestCountPets_InnerJoinOmitsEmptyKinds(t *testing.T) {
	db := newPetRepoDB(t)

	dog := seedKind(t, db, "Dog")
	cat := seedKind(t, db, "Cat")
	seedKind(t, db, "Bird") // no pets: must be absent, never zero-filled

	seedPet(t, db, "rex", func(p *domain.Pet) { p.KindID = &dog.ID })
	seedPet(t, db, "toto", func(p *domain.Pet) { p.KindID = &dog.ID })
	seedPet(t, db, "frajola", func(p *domain.Pet) { p.KindID = &cat.ID })

	out, err := CountPets(context.Background(), db, domain.LostStatuses())
	if err != nil {
		t.Fatalf("CountPets: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 kinds with pets, got %d: %+v", len(out), out)
	}
	if out[0].Slug != "dog" || out[0].NumPets != 2 {
		t.Fatalf("dog count unexpected: %+v", out[0])
	}
	if out[1].Slug != "cat" || out[1].NumPets != 1 {
		t.Fatalf("cat count unexpected: %+v", out[1])
	}
}

func TestCountPets_ExcludesInactiveAndOtherTrack(t *testing.T) {
	db := newPetRepoDB(t)
	dog := seedKind(t, db, "Dog")

	seedPet(t, db, "missing", func(p *domain.Pet) { p.KindID = &dog.ID })
	seedPet(t, db, "hidden", func(p *domain.Pet) {
		p.KindID = &dog.ID
		p.Active = false
	})
	seedPet(t, db, "adoptable", func(p *domain.Pet) {
		p.KindID = &dog.ID
		p.Status = domain.StatusForAdoption
	})

	lost, err := LostKinds(context.Background(), db)
	if err != nil {
		t.Fatalf("LostKinds: %v", err)
	}
	if len(lost) != 1 || lost[0].NumPets != 1 {
		t.Fatalf("lost counts unexpected: %+v", lost)
	}

	adoption, err := AdoptionKinds(context.Background(), db)
	if err != nil {
		t.Fatalf("AdoptionKinds: %v", err)
	}
	if len(adoption) != 1 || adoption[0].NumPets != 1 {
		t.Fatalf("adoption counts unexpected: %+v", adoption)
	}
}
