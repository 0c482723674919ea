// Package domain defines the persistence models for the pet registry:
// pets, kinds (species), geography reference data, owners, and photo
// attachments. These types are mapped with GORM and form the core data
// layer of the application.
package domain

import (
	"time"
)

// Status is the lifecycle status of a Pet, stored as a two-letter code.
// Statuses partition into two disjoint tracks: lost-and-found
// (Missing/Found) and adoption (ForAdoption/Adopted). A query for one
// track never returns pets from the other.
type Status string

const (
	StatusMissing     Status = "MI"
	StatusForAdoption Status = "FA"
	StatusAdopted     Status = "AD"
	StatusFound       Status = "FO"
)

// statusLabels maps status codes to their display labels.
var statusLabels = map[Status]string{
	StatusMissing:     "Missing",
	StatusForAdoption: "For Adoption",
	StatusAdopted:     "Adopted",
	StatusFound:       "Found",
}

// Label returns the human-readable label for s, or "" for unknown codes.
func (s Status) Label() string { return statusLabels[s] }

// Valid reports whether s is one of the four known status codes.
func (s Status) Valid() bool { _, ok := statusLabels[s]; return ok }

// LostStatuses is the lost-and-found track.
func LostStatuses() []Status { return []Status{StatusMissing, StatusFound} }

// AdoptionStatuses is the adoption track.
func AdoptionStatuses() []Status { return []Status{StatusForAdoption, StatusAdopted} }

// Size is the pet size classification; empty means unset.
type Size string

const (
	SizeSmall  Size = "SM"
	SizeMedium Size = "MD"
	SizeLarge  Size = "LG"
)

var sizeLabels = map[Size]string{
	SizeSmall:  "Small",
	SizeMedium: "Medium",
	SizeLarge:  "Large",
}

// Label returns the display label for z, or "" for unset/unknown.
func (z Size) Label() string { return sizeLabels[z] }

// Valid reports whether z is a known size code or unset.
func (z Size) Valid() bool {
	if z == "" {
		return true
	}
	_, ok := sizeLabels[z]
	return ok
}

// Sex is the pet sex; empty means unset.
type Sex string

const (
	SexMale   Sex = "MA"
	SexFemale Sex = "FE"
)

var sexLabels = map[Sex]string{
	SexMale:   "Male",
	SexFemale: "Female",
}

// Label returns the display label for x, or "" for unset/unknown.
func (x Sex) Label() string { return sexLabels[x] }

// Valid reports whether x is a known sex code or unset.
func (x Sex) Valid() bool {
	if x == "" {
		return true
	}
	_, ok := sexLabels[x]
	return ok
}

// Pet is the central entity of the registry. A pet is owned by an Owner,
// optionally references a City and a Kind, and carries a status plus
// publication/activation flags.
//
// Invariants:
//   - RequestSent is non-nil only while a removal/deactivation request is
//     outstanding; it is cleared on activation.
//   - RequestKey is non-empty only together with RequestSent pending state;
//     it is regenerated on each new request and is a 40-char hex digest.
//   - Active=false excludes the pet from every public query.
type Pet struct {
	ID             string     `json:"id"              gorm:"type:char(36);primaryKey"`
	OwnerID        string     `json:"owner_id"        gorm:"type:char(36);not null;index:idx_owner_pets"`
	Name           string     `json:"name"            gorm:"type:varchar(50);not null"`
	Description    string     `json:"description"     gorm:"type:varchar(500)"`
	CityID         *uint      `json:"city_id,omitempty"`
	KindID         *uint      `json:"kind_id,omitempty" gorm:"index"`
	Status         Status     `json:"status"          gorm:"type:char(2);not null;default:'MI';index"`
	Size           Size       `json:"size,omitempty"  gorm:"type:char(2)"`
	Sex            Sex        `json:"sex,omitempty"   gorm:"type:char(2)"`
	ProfilePicture string     `json:"profile_picture" gorm:"type:varchar(255)"`
	Published      bool       `json:"published"       gorm:"not null;default:false"`
	Active         bool       `json:"active"          gorm:"not null;default:true;index"`
	RequestSent    *time.Time `json:"request_sent,omitempty"`
	RequestKey     string     `json:"-"               gorm:"type:varchar(40)"`
	Slug           string     `json:"slug"            gorm:"type:varchar(50);not null;uniqueIndex"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// City is the optional location association (preloaded by list queries).
	City *City `json:"city,omitempty" gorm:"foreignKey:CityID;references:ID"`
	// Kind is the optional species association.
	Kind *Kind `json:"kind,omitempty" gorm:"foreignKey:KindID;references:ID"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// StatusLabel resolves the display label of the pet's status.
func (p *Pet) StatusLabel() string { return p.Status.Label() }

// FoundOrAdopted reports whether the pet reached the resolved state of
// its track (Found for lost-and-found, Adopted for adoption).
func (p *Pet) FoundOrAdopted() bool {
	return p.Status == StatusAdopted || p.Status == StatusFound
}

// HasPendingRequest reports whether a removal/deactivation request is
// outstanding for this pet.
func (p *Pet) HasPendingRequest() bool { return p.RequestSent != nil }
