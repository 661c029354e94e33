package controllers

import (
	"net/http"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateBookingInput struct {
	SalonID   uuid.UUID `json:"salonId" binding:"required"`
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	StartsAt  time.Time `json:"startsAt" binding:"required"`
}

// CreateBooking opens a pending booking; it is confirmed by payment.
func CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !input.StartsAt.After(time.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "startsAt must be in the future")
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ? AND salon_id = ? AND is_active = ?",
		input.ServiceID, input.SalonID, true).First(&service).Error; err != nil {
		utils.RespondWithDBError(c, err, "Service not found")
		return
	}

	// Price and name are denormalized so later service edits cannot
	// change what the customer agreed to pay.
	booking := models.Booking{
		SalonID:     input.SalonID,
		ServiceID:   service.ID,
		CustomerID:  userID,
		StartsAt:    input.StartsAt,
		ServiceName: service.Name,
		Price:       service.Price,
		Status:      models.BookingStatusPending,
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetMyBookings lists the customer's own bookings
func GetMyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var bookings []models.Booking
	query := config.DB.Where("customer_id = ?", userID).Order("starts_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelBooking cancels the customer's own booking. Confirmed bookings can
// be canceled until 24 hours before the appointment.
func CancelBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var booking models.Booking
	if err := config.DB.Where("id = ? AND customer_id = ?", bookingID, userID).
		First(&booking).Error; err != nil {
		utils.RespondWithDBError(c, err, "Booking not found")
		return
	}

	switch booking.Status {
	case models.BookingStatusPending:
		// always cancelable
	case models.BookingStatusConfirmed:
		if time.Until(booking.StartsAt) < 24*time.Hour {
			utils.RespondWithError(c, http.StatusConflict, "Confirmed bookings can only be canceled up to 24h before start")
			return
		}
	default:
		utils.RespondWithError(c, http.StatusConflict, "Booking cannot be canceled in its current state")
		return
	}

	if err := config.DB.Model(&booking).Update("status", models.BookingStatusCanceled).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking canceled"})
}
