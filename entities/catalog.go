package entities

import (
	"github.com/google/uuid"
)

// Unit and Ingredient are immutable reference data loaded from fixtures.

type Unit struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name string    `gorm:"uniqueIndex" json:"name"`
}

type Ingredient struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name   string    `gorm:"index" json:"name"`
	UnitID uuid.UUID `json:"measurement_unit_id"`

	Unit *Unit `gorm:"foreignKey:UnitID"`
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name  string    `json:"name"`
	Color string    `gorm:"uniqueIndex" json:"color"`
	Slug  string    `gorm:"uniqueIndex" json:"slug"`
}
