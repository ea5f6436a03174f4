package model

import (
	"time"

	"gorm.io/gorm"
)

// OTP is the append-only history of issued codes. The live code is kept on User.
type OTP struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Mobile    string    `json:"mobile" gorm:"type:varchar(10);not null;index:idx_otps_mobile_code"`
	Code      string    `json:"-" gorm:"type:varchar(6);not null;index:idx_otps_mobile_code"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	IsUsed    bool      `json:"isUsed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the pluralised default
func (OTP) TableName() string {
	return "otps"
}

// BeforeCreate assigns the identifier
func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}
