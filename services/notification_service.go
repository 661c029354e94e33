// services/notification_service.go
package services

import (
	"fmt"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type NotificationService struct {
	client *twilio.RestClient
	from   string
}

// NewNotificationService returns a no-op sender when Twilio is not
// configured, so notifications stay best-effort.
func NewNotificationService() *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSid == "" || authToken == "" {
		return &NotificationService{}
	}

	return &NotificationService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *NotificationService) SendSMS(to, body string) error {
	if s.client == nil || s.from == "" || to == "" {
		return nil
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}

func (s *NotificationService) BookingConfirmed(phone, salonName, serviceName string, startsAt time.Time) error {
	msg := fmt.Sprintf("Your booking for %s at %s on %s is confirmed. See you there!",
		serviceName, salonName, startsAt.Format("Mon, 2 Jan 15:04"))
	return s.SendSMS(phone, msg)
}

func (s *NotificationService) BookingCanceled(phone, salonName, serviceName string) error {
	msg := fmt.Sprintf("Your booking for %s at %s has been canceled and refunded.",
		serviceName, salonName)
	return s.SendSMS(phone, msg)
}
