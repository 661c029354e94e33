package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCanceled  = "canceled"
	BookingStatusExpired   = "expired"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	StartsAt    time.Time `gorm:"not null"`
	ServiceName string    `gorm:"not null"` // denormalized, survives service edits
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	Status      string    `gorm:"type:varchar(20);default:'pending'"`

	Payments []Payment `gorm:"foreignKey:BookingID"`

	gorm.Model
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
