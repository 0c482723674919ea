package domain

import (
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/textutil"
)

// State is a federative unit used as geography reference data.
type State struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	Code int    `json:"code" gorm:"not null"`
	Name string `json:"name" gorm:"type:varchar(50);not null"`
	Abbr string `json:"abbr" gorm:"type:char(2);not null;uniqueIndex"`
}

// TableName returns the database table name for State.
func (State) TableName() string { return "states" }

// City is a geography reference record. SearchName is a normalized,
// lowercased, diacritic-stripped key recomputed on every save and used
// for lookup only; cities have no lifecycle.
type City struct {
	ID         uint   `json:"id"          gorm:"primaryKey"`
	StateID    uint   `json:"state_id"    gorm:"not null;index"`
	Code       int    `json:"code"        gorm:"not null"`
	Name       string `json:"name"        gorm:"type:varchar(80);not null"`
	SearchName string `json:"search_name" gorm:"type:varchar(80);index"`

	State *State `json:"state,omitempty" gorm:"foreignKey:StateID;references:ID"`
}

// TableName returns the database table name for City.
func (City) TableName() string { return "cities" }

// BeforeSave recomputes the search key from the display name. Runs on
// both create and update so the key can never drift from the name.
func (c *City) BeforeSave(_ *gorm.DB) error {
	c.SearchName = textutil.ClearText(c.Name)
	return nil
}
