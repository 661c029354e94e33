package controllers

import (
	"errors"
	"math"
	"net/http"
	"os"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// amountInCents converts a decimal price to the provider's integer cent
// amount. Rounding, not truncation: .99 prices sit just below the exact
// cent in binary floating point.
func amountInCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

type CreateIntentInput struct {
	BookingID uuid.UUID `json:"bookingId" binding:"required"`
}

// CreatePaymentIntent opens a Stripe PaymentIntent for a pending booking
// and returns the client secret for the frontend confirmation flow.
func CreatePaymentIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateIntentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var booking models.Booking
	if err := config.DB.Where("id = ? AND customer_id = ?", input.BookingID, userID).
		First(&booking).Error; err != nil {
		utils.RespondWithDBError(c, err, "Booking not found")
		return
	}

	if booking.Status != models.BookingStatusPending {
		utils.RespondWithError(c, http.StatusConflict, "Booking is not awaiting payment")
		return
	}

	var paid models.Payment
	err := config.DB.Where("booking_id = ? AND status = ?", booking.ID, models.PaymentStatusSucceeded).
		First(&paid).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Booking is already paid")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "usd"
	}
	amountCents := amountInCents(booking.Price)

	intent, err := stripeSvc.CreatePaymentIntent(amountCents, currency, booking.ID, userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusPaymentRequired, "Payment provider error")
		return
	}

	payment := models.Payment{
		BookingID:      booking.ID,
		CustomerID:     userID,
		StripeIntentID: intent.ID,
		AmountCents:    amountCents,
		Currency:       currency,
		Status:         models.PaymentStatusRequiresPayment,
	}
	// The booking ID is the idempotency key, so a retried request gets the
	// same intent back; refresh the existing row instead of failing.
	if err := config.DB.Where("stripe_intent_id = ?", intent.ID).
		FirstOrCreate(&payment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"paymentId":    payment.ID,
		"clientSecret": intent.ClientSecret,
		"amountCents":  amountCents,
		"currency":     currency,
	})
}

// OnboardAccount creates (or resumes) Stripe Connect onboarding for the
// owner's salon and returns the hosted onboarding URL.
func OnboardAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var acct models.StripeAccount
	err := config.DB.Where("salon_id = ?", salonID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var user models.User
		if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
			utils.RespondWithDBError(c, err, "User not found")
			return
		}

		created, err := stripeSvc.CreateExpressAccount(user.Email)
		if err != nil {
			utils.RespondWithError(c, http.StatusPaymentRequired, "Payment provider error")
			return
		}

		acct = models.StripeAccount{
			SalonID:   salonID,
			AccountID: created.ID,
		}
		if err := config.DB.Create(&acct).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record account")
			return
		}
	} else if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	link, err := stripeSvc.CreateAccountLink(acct.AccountID)
	if err != nil {
		utils.RespondWithError(c, http.StatusPaymentRequired, "Payment provider error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId":     acct.AccountID,
		"onboardingUrl": link.URL,
	})
}

// OnboardStatus refreshes and returns the Connect account state
func OnboardStatus(c *gin.Context) {
	salonID, ok := currentSalonID(c)
	if !ok {
		return
	}

	var acct models.StripeAccount
	if err := config.DB.Where("salon_id = ?", salonID).First(&acct).Error; err != nil {
		utils.RespondWithDBError(c, err, "No payment account for this salon")
		return
	}

	remote, err := stripeSvc.GetAccount(acct.AccountID)
	if err == nil {
		acct.ChargesEnabled = remote.ChargesEnabled
		acct.DetailsSubmitted = remote.DetailsSubmitted
		if err := config.DB.Save(&acct).Error; err != nil {
			// Best-effort persist; the response still reflects Stripe's state.
			zap.L().Warn("persist account refresh failed",
				zap.String("accountId", acct.AccountID),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"accountId":        acct.AccountID,
		"chargesEnabled":   acct.ChargesEnabled,
		"detailsSubmitted": acct.DetailsSubmitted,
	})
}
