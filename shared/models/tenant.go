package models

import (
	"time"
)

// Tenant represents an occupant of a unit. Rows are never hard-deleted:
// IsActive flips to false on move-out so billing history stays intact.
type Tenant struct {
	ID              string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title           string     `json:"title"`
	FirstName       string     `json:"first_name" gorm:"not null"`
	LastName        string     `json:"last_name" gorm:"not null"`
	PhoneNumber     string     `json:"phone_number"`
	Email           string     `json:"email"`
	MonthlyRent     float64    `json:"monthly_rent" gorm:"not null"`
	MonthlyCharge   float64    `json:"monthly_charge" gorm:"not null"`
	UnitID          string     `json:"unit_id" gorm:"type:varchar(64);not null;index"`
	EntryDate       time.Time  `json:"entry_date" gorm:"not null"`
	IsActive        bool       `json:"is_active" gorm:"default:true;index"`
	LeaseStartDate  *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate    *time.Time `json:"lease_end_date,omitempty"`
	SecurityDeposit float64    `json:"security_deposit"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relationships
	Unit  *Unit  `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Bills []Bill `json:"bills,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// MonthlyTotal is the amount billed for a full month of occupancy.
func (t *Tenant) MonthlyTotal() float64 {
	return t.MonthlyRent + t.MonthlyCharge
}
