package domain

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/textutil"
)

// Kind is a species/category classification for pets (e.g. dog, cat).
// The slug is derived from the name on creation and used in URLs.
type Kind struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug string `json:"slug" gorm:"type:varchar(30);not null;uniqueIndex"`
}

// TableName returns the database table name for Kind.
func (Kind) TableName() string { return "kinds" }

// BeforeCreate populates the slug from the name when not set explicitly.
func (k *Kind) BeforeCreate(_ *gorm.DB) error {
	if k.Slug == "" {
		k.Slug = textutil.Slugify(k.Name)
	}
	return nil
}

// KindRef identifies a kind either by numeric id or by slug. The variant
// is decided once, when the identifier string enters the system: an
// identifier that parses as an integer is a numeric reference, anything
// else is a slug reference.
type KindRef struct {
	ID      int64
	Slug    string
	Numeric bool
}

// ParseKindRef classifies the raw identifier. The dispatch is a
// parse-success branch, not a type check: "12" is numeric, "12dogs" is a
// slug. Negative integers stay numeric and simply match nothing.
func ParseKindRef(s string) KindRef {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindRef{ID: n, Numeric: true}
	}
	return KindRef{Slug: s}
}

// String renders the reference back to its identifier form.
func (r KindRef) String() string {
	if r.Numeric {
		return strconv.FormatInt(r.ID, 10)
	}
	return r.Slug
}
