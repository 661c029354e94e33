// services/sweeper_service.go
package services

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonhub-backend/models"
)

const defaultHoldMinutes = 30

// SweeperService expires pending bookings whose payment hold lapsed and
// retries reviews stuck in pending moderation.
type SweeperService struct {
	db          *gorm.DB
	moderation  *ModerationService
	holdMinutes int
}

func NewSweeperService(db *gorm.DB, moderation *ModerationService) *SweeperService {
	holdMinutes := defaultHoldMinutes
	if env := os.Getenv("BOOKING_HOLD_MINUTES"); env != "" {
		if m, err := strconv.Atoi(env); err == nil && m > 0 {
			holdMinutes = m
		}
	}
	return &SweeperService{db: db, moderation: moderation, holdMinutes: holdMinutes}
}

func (s *SweeperService) StartScheduler() {
	c := cron.New()

	// Every 15 minutes
	c.AddFunc("*/15 * * * *", s.Run)

	c.Start()
	zap.L().Info("booking sweeper started", zap.Int("holdMinutes", s.holdMinutes))
}

func (s *SweeperService) Run() {
	s.ExpireStaleBookings()
	s.moderation.RetryPending(time.Now().Add(-time.Minute))
}

func (s *SweeperService) ExpireStaleBookings() {
	cutoff := time.Now().Add(-time.Duration(s.holdMinutes) * time.Minute)

	result := s.db.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingStatusPending, cutoff).
		Update("status", models.BookingStatusExpired)
	if result.Error != nil {
		zap.L().Error("expire stale bookings", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("expired stale bookings", zap.Int64("count", result.RowsAffected))
	}
}
