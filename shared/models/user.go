package models

import (
	"time"
)

// User represents a landlord account.
type User struct {
	ID                   string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	FirstName            string     `json:"first_name" gorm:"not null"`
	LastName             string     `json:"last_name" gorm:"not null"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	Password             string     `json:"-" gorm:"not null"`
	Phone                string     `json:"phone"`
	Address              *Address   `json:"address,omitempty" gorm:"type:jsonb"`
	AvatarURL            string     `json:"avatar_url"`
	Language             string     `json:"language" gorm:"default:en"`
	Theme                string     `json:"theme" gorm:"default:light"`
	ResetPasswordToken   *string    `json:"-" gorm:"index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Relationships
	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:OwnerID"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName returns the owner's display name used on receipts.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
