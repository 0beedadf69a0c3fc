package models

// Unit represents a rentable unit inside a property.
//
// The current occupant is not stored on the unit; it is derived as the most
// recent active tenant referencing the unit, and past occupants remain
// queryable through the tenants table by unit_id.
type Unit struct {
	ID            string `json:"id" gorm:"type:varchar(64);primaryKey"`
	PropertyID    string `json:"property_id" gorm:"type:varchar(64);not null;index"`
	UnitNumber    string `json:"unit_number"`
	IsOccupied    bool   `json:"is_occupied" gorm:"default:false"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	SquareFootage int    `json:"square_footage"`

	// Relationships
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Tenants  []Tenant  `json:"tenants,omitempty" gorm:"foreignKey:UnitID"`
}

// TableName returns the table name for the Unit model
func (Unit) TableName() string {
	return "units"
}
