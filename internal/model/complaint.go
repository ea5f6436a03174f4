package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComplaintCategory classifies the kind of repair needed
type ComplaintCategory string

const (
	CategoryElectrical  ComplaintCategory = "ELECTRICAL"
	CategoryPlumbing    ComplaintCategory = "PLUMBING"
	CategoryElectronics ComplaintCategory = "ELECTRONICS"
	CategoryCarpentry   ComplaintCategory = "CARPENTRY"
	CategoryStructural  ComplaintCategory = "STRUCTURAL"
	CategoryOther       ComplaintCategory = "OTHER"
)

// Categories lists every accepted category
var Categories = []ComplaintCategory{
	CategoryElectrical, CategoryPlumbing, CategoryElectronics,
	CategoryCarpentry, CategoryStructural, CategoryOther,
}

// Valid reports whether c is a known category
func (c ComplaintCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ComplaintPriority is the urgency assigned to a complaint
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "LOW"
	PriorityMedium ComplaintPriority = "MEDIUM"
	PriorityHigh   ComplaintPriority = "HIGH"
	PriorityUrgent ComplaintPriority = "URGENT"
)

// Valid reports whether p is a known priority
func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Complaint is a maintenance request raised by a tenant against their property.
// PropertyID is copied from the reporter when the complaint is created and is
// not updated if the reporter later moves.
type Complaint struct {
	ID          string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       *string           `json:"title,omitempty" gorm:"type:varchar(255)"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Category    ComplaintCategory `json:"category" gorm:"type:varchar(20);not null;index"`
	Status      ComplaintStatus   `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Priority    ComplaintPriority `json:"priority" gorm:"type:varchar(10);not null;default:'MEDIUM'"`

	IssueImages  datatypes.JSONSlice[string] `json:"issueImages"`
	IssueVideos  datatypes.JSONSlice[string] `json:"issueVideos"`
	BeforeImages datatypes.JSONSlice[string] `json:"beforeImages"`
	BeforeVideos datatypes.JSONSlice[string] `json:"beforeVideos"`
	AfterImages  datatypes.JSONSlice[string] `json:"afterImages"`
	AfterVideos  datatypes.JSONSlice[string] `json:"afterVideos"`

	WorkDescription *string `json:"workDescription,omitempty" gorm:"type:text"`
	MaterialsUsed   *string `json:"materialsUsed,omitempty" gorm:"type:text"`
	WorkNotes       *string `json:"workNotes,omitempty" gorm:"type:text"`

	UserID     string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	User       *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Reporter   *Reporter `json:"user,omitempty" gorm:"-"`
	PropertyID string    `json:"propertyId" gorm:"type:varchar(36);not null;index"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:RESTRICT"`

	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	StartedAt  *time.Time `json:"startedAt"`
	ResolvedAt *time.Time `json:"resolvedAt"`
	ClosedAt   *time.Time `json:"closedAt"`
}

// AttachReporter copies the loaded reporter's contact details for output
func (c *Complaint) AttachReporter() {
	if c.User == nil {
		return
	}
	c.Reporter = &Reporter{ID: c.User.ID, Name: c.User.Name, Mobile: c.User.Mobile}
}

// BeforeCreate assigns the identifier and initial state
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = StatusOpen
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	for _, media := range []*datatypes.JSONSlice[string]{
		&c.IssueImages, &c.IssueVideos, &c.BeforeImages,
		&c.BeforeVideos, &c.AfterImages, &c.AfterVideos,
	} {
		if *media == nil {
			*media = datatypes.JSONSlice[string]{}
		}
	}
	return nil
}
