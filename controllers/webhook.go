package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"salonhub-backend/config"
	"salonhub-backend/models"
	"salonhub-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StripeWebhook receives signed provider events and reconciles them
// against local payment/booking rows. Events are keyed by provider event
// ID so repeated deliveries are acknowledged without reprocessing, and
// handlers only ever upgrade state so out-of-order deliveries cannot
// downgrade a settled payment.
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}

	event, err := verifyStripeEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		zap.L().Warn("webhook signature verification failed", zap.Error(err))
		utils.RespondWithError(c, http.StatusBadRequest, "Signature verification failed")
		return
	}

	var seen models.WebhookEvent
	if err := config.DB.Where("event_id = ?", event.ID).First(&seen).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = handlePaymentSucceeded(event)
	case "payment_intent.payment_failed":
		err = handlePaymentFailed(event)
	case "charge.refunded":
		err = handleChargeRefunded(event)
	case "account.updated":
		err = handleAccountUpdated(event)
	default:
		zap.L().Debug("ignoring webhook event", zap.String("type", string(event.Type)))
	}
	if err != nil {
		// Not recording the event makes the provider redeliver it.
		zap.L().Error("webhook handler failed",
			zap.String("eventId", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process event")
		return
	}

	record := models.WebhookEvent{
		EventID:    event.ID,
		Type:       string(event.Type),
		ReceivedAt: time.Now(),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifyStripeEvent tries the known signing secrets in sequence; rotation
// leaves a window where either secret may have signed the delivery.
func verifyStripeEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	secrets := []string{
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		os.Getenv("STRIPE_WEBHOOK_SECRET_SECONDARY"),
	}

	var lastErr error
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		event, err := webhook.ConstructEvent(payload, sigHeader, secret)
		if err == nil {
			return event, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no webhook secret configured")
	}
	return stripe.Event{}, lastErr
}

func handlePaymentSucceeded(event stripe.Event) error {
	intentID, err := objectID(event)
	if err != nil {
		return err
	}

	var payment models.Payment
	if err := config.DB.Where("stripe_intent_id = ?", intentID).First(&payment).Error; err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}

	// Upgrade only; a replayed success after a refund must not resurrect it.
	if payment.Status == models.PaymentStatusSucceeded || payment.Status == models.PaymentStatusRefunded {
		return nil
	}
	if err := config.DB.Model(&payment).Update("status", models.PaymentStatusSucceeded).Error; err != nil {
		return err
	}

	var booking models.Booking
	if err := config.DB.First(&booking, "id = ?", payment.BookingID).Error; err != nil {
		return err
	}
	// A payment that lands after the hold expired still confirms the slot.
	if booking.Status == models.BookingStatusPending || booking.Status == models.BookingStatusExpired {
		if err := config.DB.Model(&booking).Update("status", models.BookingStatusConfirmed).Error; err != nil {
			return err
		}
	}

	notifyBookingConfirmed(&booking)
	return nil
}

func handlePaymentFailed(event stripe.Event) error {
	intentID, err := objectID(event)
	if err != nil {
		return err
	}

	var payment models.Payment
	if err := config.DB.Where("stripe_intent_id = ?", intentID).First(&payment).Error; err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}

	// A late failure for an already-settled intent is stale; drop it.
	if payment.Status == models.PaymentStatusSucceeded || payment.Status == models.PaymentStatusRefunded {
		return nil
	}
	return config.DB.Model(&payment).Update("status", models.PaymentStatusFailed).Error
}

func handleChargeRefunded(event stripe.Event) error {
	intentID, ok := event.Data.Object["payment_intent"].(string)
	if !ok || intentID == "" {
		return errors.New("charge.refunded without payment_intent")
	}

	var payment models.Payment
	if err := config.DB.Where("stripe_intent_id = ?", intentID).First(&payment).Error; err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}

	if payment.Status == models.PaymentStatusRefunded {
		return nil
	}
	if err := config.DB.Model(&payment).Update("status", models.PaymentStatusRefunded).Error; err != nil {
		return err
	}

	var booking models.Booking
	if err := config.DB.First(&booking, "id = ?", payment.BookingID).Error; err != nil {
		return err
	}
	if booking.Status != models.BookingStatusCanceled {
		if err := config.DB.Model(&booking).Update("status", models.BookingStatusCanceled).Error; err != nil {
			return err
		}
	}

	notifyBookingCanceled(&booking)
	return nil
}

func handleAccountUpdated(event stripe.Event) error {
	accountID, err := objectID(event)
	if err != nil {
		return err
	}

	var acct models.StripeAccount
	if err := config.DB.Where("account_id = ?", accountID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not an account we track (e.g. the platform account)
			return nil
		}
		return err
	}

	chargesEnabled, _ := event.Data.Object["charges_enabled"].(bool)
	detailsSubmitted, _ := event.Data.Object["details_submitted"].(bool)

	return config.DB.Model(&acct).Updates(map[string]interface{}{
		"charges_enabled":   chargesEnabled,
		"details_submitted": detailsSubmitted,
	}).Error
}

func objectID(event stripe.Event) (string, error) {
	id, ok := event.Data.Object["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%s event without object id", event.Type)
	}
	return id, nil
}

// SMS side effects are best-effort; a delivery failure never fails the webhook.
func notifyBookingConfirmed(booking *models.Booking) {
	customer, salon, err := bookingParties(booking)
	if err != nil {
		zap.L().Warn("lookup for confirmation SMS failed", zap.Error(err))
		return
	}
	if err := notifier.BookingConfirmed(customer.Phone, salon.Name, booking.ServiceName, booking.StartsAt); err != nil {
		zap.L().Warn("confirmation SMS failed", zap.Error(err))
	}
}

func notifyBookingCanceled(booking *models.Booking) {
	customer, salon, err := bookingParties(booking)
	if err != nil {
		zap.L().Warn("lookup for cancellation SMS failed", zap.Error(err))
		return
	}
	if err := notifier.BookingCanceled(customer.Phone, salon.Name, booking.ServiceName); err != nil {
		zap.L().Warn("cancellation SMS failed", zap.Error(err))
	}
}

func bookingParties(booking *models.Booking) (*models.User, *models.Salon, error) {
	var customer models.User
	if err := config.DB.First(&customer, "id = ?", booking.CustomerID).Error; err != nil {
		return nil, nil, err
	}
	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", booking.SalonID).Error; err != nil {
		return nil, nil, err
	}
	return &customer, &salon, nil
}
