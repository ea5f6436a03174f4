package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a tenant identified by mobile number. Every user owns exactly one property.
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Mobile     string     `json:"mobile" gorm:"type:varchar(10);uniqueIndex;not null"`
	Name       *string    `json:"name,omitempty" gorm:"type:varchar(100)"`
	Email      *string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	OTPCode    *string    `json:"-" gorm:"column:otp_code;type:varchar(6)"`
	OTPExpiry  *time.Time `json:"-" gorm:"column:otp_expiry"`
	IsVerified bool       `json:"isVerified" gorm:"not null;default:false"`
	IsActive   bool       `json:"isActive" gorm:"not null;default:true"`
	PropertyID string     `json:"propertyId" gorm:"type:varchar(36);not null;index"`
	Property   *Property  `json:"property,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:RESTRICT"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return nil
}

// UserWithCounts is a user listing row
type UserWithCounts struct {
	User
	Count UserCounts `json:"_count"`
}

// UserCounts holds related row counts for a user
type UserCounts struct {
	Complaints int64 `json:"complaints"`
}

// Reporter is the contact summary attached to complaints
type Reporter struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Mobile string  `json:"mobile"`
}
