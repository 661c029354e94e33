package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salonhub-backend/models"
)

func seedBooking(t *testing.T, db *gorm.DB, status string, age time.Duration) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		SalonID:     uuid.New(),
		ServiceID:   uuid.New(),
		CustomerID:  uuid.New(),
		StartsAt:    time.Now().Add(48 * time.Hour),
		ServiceName: "Haircut",
		Price:       35,
		Status:      status,
	}
	require.NoError(t, db.Create(booking).Error)
	require.NoError(t, db.Model(booking).Update("created_at", time.Now().Add(-age)).Error)
	return booking
}

func TestExpireStaleBookings(t *testing.T) {
	db := newTestDB(t)
	svc := NewSweeperService(db, newTestModerator(db, "http://127.0.0.1:0"))

	stale := seedBooking(t, db, models.BookingStatusPending, time.Hour)
	fresh := seedBooking(t, db, models.BookingStatusPending, time.Minute)
	confirmed := seedBooking(t, db, models.BookingStatusConfirmed, time.Hour)

	svc.ExpireStaleBookings()

	var got models.Booking
	require.NoError(t, db.First(&got, "id = ?", stale.ID).Error)
	assert.Equal(t, models.BookingStatusExpired, got.Status)

	got = models.Booking{}
	require.NoError(t, db.First(&got, "id = ?", fresh.ID).Error)
	assert.Equal(t, models.BookingStatusPending, got.Status)

	got = models.Booking{}
	require.NoError(t, db.First(&got, "id = ?", confirmed.ID).Error)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
}

func TestSweeperHoldMinutesFromEnv(t *testing.T) {
	t.Setenv("BOOKING_HOLD_MINUTES", "5")
	db := newTestDB(t)
	svc := NewSweeperService(db, newTestModerator(db, "http://127.0.0.1:0"))
	assert.Equal(t, 5, svc.holdMinutes)

	t.Setenv("BOOKING_HOLD_MINUTES", "not-a-number")
	svc = NewSweeperService(db, newTestModerator(db, "http://127.0.0.1:0"))
	assert.Equal(t, defaultHoldMinutes, svc.holdMinutes)
}
