package models

import (
	"time"
)

// Bill is one month of rent and charges owed by a tenant.
//
// The composite unique index on (tenant_id, month, year) backs the
// one-bill-per-tenant-per-month invariant at the storage level, so a
// concurrent generation run degrades into a duplicate-key error that the
// generator treats as "already billed".
type Bill struct {
	ID        string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID  string     `json:"tenant_id" gorm:"type:varchar(64);not null;uniqueIndex:uq_bills_tenant_period"`
	Amount    float64    `json:"amount" gorm:"not null"`
	Month     int        `json:"month" gorm:"not null;uniqueIndex:uq_bills_tenant_period"`
	Year      int        `json:"year" gorm:"not null;uniqueIndex:uq_bills_tenant_period"`
	IsPaid    bool       `json:"is_paid" gorm:"default:false"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	DueDate   time.Time  `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}
