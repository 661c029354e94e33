package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusRequiresPayment = "requires_payment"
	PaymentStatusSucceeded       = "succeeded"
	PaymentStatusFailed          = "failed"
	PaymentStatusRefunded        = "refunded"
)

type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	StripeIntentID string `gorm:"uniqueIndex;not null"`
	AmountCents    int64  `gorm:"not null"`
	Currency       string `gorm:"type:varchar(3);not null"`
	Status         string `gorm:"type:varchar(20);default:'requires_payment'"`

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// StripeAccount tracks a salon's Connect Express account state.
type StripeAccount struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	AccountID        string `gorm:"uniqueIndex;not null"`
	ChargesEnabled   bool   `gorm:"default:false"`
	DetailsSubmitted bool   `gorm:"default:false"`

	gorm.Model
}

func (a *StripeAccount) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
