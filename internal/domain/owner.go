package domain

import "time"

// Owner is the profile that submits and owns pet records. The email is
// the recipient of request-action and deactivation notifications.
type Owner struct {
	ID        string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"  gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Owner.
func (Owner) TableName() string { return "owners" }

// Photo is an auxiliary image attached to a pet. It has no behavior of
// its own beyond existing or being deleted; the stored value is a path
// or URL, never the image bytes.
type Photo struct {
	ID        uint      `json:"id"     gorm:"primaryKey"`
	PetID     string    `json:"pet_id" gorm:"type:char(36);not null;index"`
	Image     string    `json:"image"  gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`

	// Pet is the owning record; photos are cascade-deleted with it.
	Pet Pet `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Photo.
func (Photo) TableName() string { return "photos" }
