package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

const (
	ReportStatusOpen      = "open"
	ReportStatusDismissed = "dismissed"
	ReportStatusUpheld    = "upheld"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BookingID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"` // one review per booking
	SalonID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment string `gorm:"type:text"`

	IsVisible        bool    `gorm:"default:true"`
	ModerationStatus string  `gorm:"type:varchar(20);default:'pending'"`
	ModerationReason string  `gorm:"type:text"`
	Confidence       float64 `gorm:"default:0"`

	Reports []ReviewReport `gorm:"foreignKey:ReviewID"`

	gorm.Model
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// ReviewReport is opened either by a customer or automatically by the
// moderation pipeline (nil ReporterID).
type ReviewReport struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	ReviewID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	ReporterID *uuid.UUID `gorm:"type:uuid;index"`

	Reason string `gorm:"type:text;not null"`
	Status string `gorm:"type:varchar(20);default:'open'"`

	gorm.Model
}

func (r *ReviewReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
