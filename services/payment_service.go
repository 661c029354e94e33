// services/payment_service.go
package services

import (
	"os"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/account"
	"github.com/stripe/stripe-go/v75/accountlink"
	"github.com/stripe/stripe-go/v75/paymentintent"
)

type StripeService struct {
	apiKey string
}

func NewStripeService() *StripeService {
	return &StripeService{apiKey: os.Getenv("STRIPE_KEY")}
}

// CreatePaymentIntent opens an intent for a booking. The booking ID doubles
// as the idempotency key so a retried request cannot double-charge.
func (s *StripeService) CreatePaymentIntent(amountCents int64, currency string, bookingID, customerID uuid.UUID) (*stripe.PaymentIntent, error) {
	stripe.Key = s.apiKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: map[string]string{
			"booking_id": bookingID.String(),
			"user_id":    customerID.String(),
		},
	}
	params.SetIdempotencyKey(bookingID.String())
	return paymentintent.New(params)
}

// CreateExpressAccount opens a Connect Express account for a salon owner.
func (s *StripeService) CreateExpressAccount(email string) (*stripe.Account, error) {
	stripe.Key = s.apiKey
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	return account.New(params)
}

// CreateAccountLink returns the hosted onboarding URL for an account.
func (s *StripeService) CreateAccountLink(accountID string) (*stripe.AccountLink, error) {
	stripe.Key = s.apiKey
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(base + "/onboarding/refresh"),
		ReturnURL:  stripe.String(base + "/onboarding/complete"),
		Type:       stripe.String("account_onboarding"),
	}
	return accountlink.New(params)
}

// GetAccount refreshes the account state from Stripe.
func (s *StripeService) GetAccount(accountID string) (*stripe.Account, error) {
	stripe.Key = s.apiKey
	return account.GetByID(accountID, nil)
}
