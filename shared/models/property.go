package models

import (
	"time"
)

// PropertyType classifies a property.
type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeCondo      PropertyType = "condo"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeCommercial PropertyType = "commercial"
)

// Property represents a building owned by a landlord.
type Property struct {
	ID           string       `json:"id" gorm:"type:varchar(64);primaryKey"`
	OwnerID      string       `json:"owner_id" gorm:"type:varchar(64);not null;index"`
	Address      Address      `json:"address" gorm:"type:jsonb"`
	Nickname     string       `json:"nickname"`
	PropertyType PropertyType `json:"property_type" gorm:"type:varchar(20)"`
	ImageURL     string       `json:"image_url"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relationships
	Owner *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Units []Unit `json:"units,omitempty" gorm:"foreignKey:PropertyID"`
}

// TableName returns the table name for the Property model
func (Property) TableName() string {
	return "properties"
}
