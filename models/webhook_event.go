package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookEvent records processed provider event IDs so repeated
// deliveries can be acknowledged without reprocessing.
type WebhookEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID    string    `gorm:"uniqueIndex;not null"`
	Type       string    `gorm:"not null"`
	ReceivedAt time.Time `gorm:"not null"`

	gorm.Model
}

func (w *WebhookEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}
