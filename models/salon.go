package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salon struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Name         string `gorm:"not null"`
	Address      string
	Description  string `gorm:"type:text"`
	WorkingHours JSONB  `gorm:"type:jsonb;default:'{}'"`
	IsActive     bool   `gorm:"default:true"`

	Services []Service `gorm:"foreignKey:SalonID"`
	Bookings []Booking `gorm:"foreignKey:SalonID"`
	Reviews  []Review  `gorm:"foreignKey:SalonID"`

	gorm.Model
}

func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
