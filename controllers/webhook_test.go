package controllers_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"

	"salonhub-backend/models"
)

const (
	primarySecret   = "whsec_primary_test"
	secondarySecret = "whsec_secondary_test"
)

func signedHeader(payload []byte, secret string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func (e *testEnv) postWebhook(payload []byte, secret string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, secret))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// paidBooking seeds a pending booking with an open payment intent.
func (e *testEnv) pendingPayment(salonID, customerID uuid.UUID, intentID string) (*models.Booking, *models.Payment) {
	e.t.Helper()
	booking := &models.Booking{
		SalonID:     salonID,
		ServiceID:   uuid.New(),
		CustomerID:  customerID,
		StartsAt:    time.Now().Add(48 * time.Hour),
		ServiceName: "Haircut",
		Price:       35,
		Status:      models.BookingStatusPending,
	}
	require.NoError(e.t, e.db.Create(booking).Error)

	payment := &models.Payment{
		BookingID:      booking.ID,
		CustomerID:     customerID,
		StripeIntentID: intentID,
		AmountCents:    3500,
		Currency:       "usd",
		Status:         models.PaymentStatusRequiresPayment,
	}
	require.NoError(e.t, e.db.Create(payment).Error)
	return booking, payment
}

func intentEvent(eventID, eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":%q,"data":{"object":{"id":%q,"object":"payment_intent"}}}`,
		eventID, stripe.APIVersion, eventType, intentID))
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	t.Setenv("STRIPE_WEBHOOK_SECRET_SECONDARY", secondarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550140", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550141")
	booking, payment := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_1")

	payload := intentEvent("evt_1", "payment_intent.succeeded", "pi_test_1")
	w := env.postWebhook(payload, primarySecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var gotPayment models.Payment
	require.NoError(t, env.db.First(&gotPayment, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, gotPayment.Status)

	var gotBooking models.Booking
	require.NoError(t, env.db.First(&gotBooking, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusConfirmed, gotBooking.Status)

	var count int64
	env.db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWebhookSecondarySecret(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	t.Setenv("STRIPE_WEBHOOK_SECRET_SECONDARY", secondarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550142", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550143")
	_, payment := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_2")

	// Signed with the rotated secondary secret
	payload := intentEvent("evt_2", "payment_intent.succeeded", "pi_test_2")
	w := env.postWebhook(payload, secondarySecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Payment
	require.NoError(t, env.db.First(&got, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, got.Status)
}

func TestWebhookBadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	t.Setenv("STRIPE_WEBHOOK_SECRET_SECONDARY", secondarySecret)
	env := setupTest(t)

	payload := intentEvent("evt_3", "payment_intent.succeeded", "pi_test_3")
	w := env.postWebhook(payload, "whsec_wrong")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550144", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550145")
	booking, _ := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_4")

	payload := intentEvent("evt_4", "payment_intent.succeeded", "pi_test_4")
	w := env.postWebhook(payload, primarySecret)
	require.Equal(t, http.StatusOK, w.Code)

	// Cancel locally, then replay: the duplicate must be a no-op.
	require.NoError(t, env.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("status", models.BookingStatusCanceled).Error)

	w = env.postWebhook(payload, primarySecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate")

	var got models.Booking
	require.NoError(t, env.db.First(&got, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusCanceled, got.Status)

	var count int64
	env.db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWebhookOutOfOrderFailure(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550146", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550147")
	_, payment := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_5")

	w := env.postWebhook(intentEvent("evt_5a", "payment_intent.succeeded", "pi_test_5"), primarySecret)
	require.Equal(t, http.StatusOK, w.Code)

	// A stale failure delivered after the success must not downgrade.
	w = env.postWebhook(intentEvent("evt_5b", "payment_intent.payment_failed", "pi_test_5"), primarySecret)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Payment
	require.NoError(t, env.db.First(&got, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, got.Status)
}

func TestWebhookPaymentFailed(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550148", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550149")
	booking, payment := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_6")

	w := env.postWebhook(intentEvent("evt_6", "payment_intent.payment_failed", "pi_test_6"), primarySecret)
	require.Equal(t, http.StatusOK, w.Code)

	var gotPayment models.Payment
	require.NoError(t, env.db.First(&gotPayment, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, gotPayment.Status)

	// Booking stays pending; the customer can retry payment.
	var gotBooking models.Booking
	require.NoError(t, env.db.First(&gotBooking, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, gotBooking.Status)
}

func TestWebhookChargeRefunded(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550150", "Clip Joint")
	customer := env.registerCustomer("cust@example.com", "+14155550151")
	booking, payment := env.pendingPayment(owner.SalonID, customer.UserID, "pi_test_7")

	w := env.postWebhook(intentEvent("evt_7a", "payment_intent.succeeded", "pi_test_7"), primarySecret)
	require.Equal(t, http.StatusOK, w.Code)

	payload := []byte(fmt.Sprintf(`{"id":"evt_7b","api_version":%q,"type":"charge.refunded","data":{"object":{"id":"ch_test_7","object":"charge","payment_intent":"pi_test_7"}}}`, stripe.APIVersion))
	w = env.postWebhook(payload, primarySecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var gotPayment models.Payment
	require.NoError(t, env.db.First(&gotPayment, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusRefunded, gotPayment.Status)

	var gotBooking models.Booking
	require.NoError(t, env.db.First(&gotBooking, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusCanceled, gotBooking.Status)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	payload := []byte(fmt.Sprintf(`{"id":"evt_8","api_version":%q,"type":"customer.created","data":{"object":{"id":"cus_1"}}}`, stripe.APIVersion))
	w := env.postWebhook(payload, primarySecret)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnknownIntentRetried(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	// No matching payment row: respond 500 so the provider redelivers.
	w := env.postWebhook(intentEvent("evt_9", "payment_intent.succeeded", "pi_missing"), primarySecret)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	env.db.Model(&models.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWebhookAccountUpdated(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", primarySecret)
	env := setupTest(t)

	owner := env.registerOwner("owner@example.com", "+14155550152", "Clip Joint")
	acct := &models.StripeAccount{SalonID: owner.SalonID, AccountID: "acct_test_1"}
	require.NoError(t, env.db.Create(acct).Error)

	payload := []byte(fmt.Sprintf(`{"id":"evt_10","api_version":%q,"type":"account.updated","data":{"object":{"id":"acct_test_1","object":"account","charges_enabled":true,"details_submitted":true}}}`, stripe.APIVersion))
	w := env.postWebhook(payload, primarySecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.StripeAccount
	require.NoError(t, env.db.First(&got, "id = ?", acct.ID).Error)
	assert.True(t, got.ChargesEnabled)
	assert.True(t, got.DetailsSubmitted)
}
