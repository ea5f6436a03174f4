package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property represents a rented unit. It is created together with its owning User.
type Property struct {
	ID            string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Address       string              `json:"address" gorm:"type:varchar(255);not null"`
	FullAddress   string              `json:"fullAddress" gorm:"type:text;not null"`
	City          string              `json:"city" gorm:"type:varchar(100);not null;index"`
	State         string              `json:"state" gorm:"type:varchar(100);not null"`
	Pincode       string              `json:"pincode" gorm:"type:varchar(6);not null"`
	Bedrooms      int                 `json:"bedrooms" gorm:"not null"`
	Bathrooms     int                 `json:"bathrooms" gorm:"not null"`
	HasLivingArea bool                `json:"hasLivingArea" gorm:"not null"`
	HasDiningArea bool                `json:"hasDiningArea" gorm:"not null"`
	HasKitchen    bool                `json:"hasKitchen" gorm:"not null"`
	HasUtility    bool                `json:"hasUtility" gorm:"not null"`
	HasGarden     bool                `json:"hasGarden" gorm:"not null"`
	HasPowderRoom bool                `json:"hasPowderRoom" gorm:"not null"`
	PropertyType  *string             `json:"propertyType,omitempty" gorm:"type:varchar(50)"`
	Area          decimal.NullDecimal `json:"area" gorm:"type:numeric(10,2)"`
	Floor         *int                `json:"floor,omitempty"`
	TotalFloors   *int                `json:"totalFloors,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

// PropertyWithCounts is a property listing row
type PropertyWithCounts struct {
	Property
	Count PropertyCounts `json:"_count"`
}

// PropertyCounts holds related row counts for a property
type PropertyCounts struct {
	Users      int64 `json:"users"`
	Complaints int64 `json:"complaints"`
}
