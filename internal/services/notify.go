package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
)

// Notifier delivers OTPs and reminders to users. Delivery is best-effort
// everywhere it is used: failures are logged, never propagated into the
// payment flow.
type Notifier interface {
	SendOTP(user *models.User, otp string) error
	SendTaxReminder(user *models.User, vehicle *models.Vehicle) error
}

// MailService sends notification emails over SMTP
type MailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailService creates a mail service from SMTP_* environment variables.
// Returns an error when the configuration is incomplete.
func NewMailService() (*MailService, error) {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")
	if host == "" || user == "" || password == "" {
		return nil, fmt.Errorf("missing SMTP credentials in environment variables")
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	return &MailService{
		host:     host,
		port:     port,
		username: user,
		password: password,
		from:     from,
	}, nil
}

func (m *MailService) send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, to, subject, htmlBody)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	log.Printf("✅ Email sent to %s: %s", to, subject)
	return nil
}

func (m *MailService) SendOTP(user *models.User, otp string) error {
	body := fmt.Sprintf("<p>Your OTP for confirming the payment is: <b>%s</b></p><p>This OTP is valid for 5 minutes.</p>", otp)
	return m.send(user.Email, "Your OTP for Bluebook Payment", body)
}

func (m *MailService) SendTaxReminder(user *models.User, vehicle *models.Vehicle) error {
	body := fmt.Sprintf("<p>The tax for your vehicle <b>%s</b> expires on %s. Renew it before the due date to avoid fines.</p>",
		vehicle.RegistrationNo, vehicle.TaxExpireDate.Format("2006-01-02"))
	return m.send(user.Email, "Vehicle Tax Renewal Reminder", body)
}

// SMSService sends notification texts via Twilio, for users who registered
// a phone number
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates an SMS service from TWILIO_* environment variables
func NewSMSService() (*SMSService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &SMSService{client: client, from: from}, nil
}

func (s *SMSService) sendText(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}
	log.Printf("✅ SMS sent to %s", to)
	return nil
}

func (s *SMSService) SendOTP(user *models.User, otp string) error {
	if user.Phone == "" {
		return nil
	}
	return s.sendText(user.Phone, fmt.Sprintf("Your Bluebook payment OTP is %s. It is valid for 5 minutes.", otp))
}

func (s *SMSService) SendTaxReminder(user *models.User, vehicle *models.Vehicle) error {
	if user.Phone == "" {
		return nil
	}
	return s.sendText(user.Phone, fmt.Sprintf("Tax for vehicle %s expires on %s. Renew before the due date to avoid fines.",
		vehicle.RegistrationNo, vehicle.TaxExpireDate.Format("2006-01-02")))
}

// MultiNotifier fans a notification out to every configured channel and
// reports the first error
type MultiNotifier []Notifier

func (m MultiNotifier) SendOTP(user *models.User, otp string) error {
	var firstErr error
	for _, n := range m {
		if err := n.SendOTP(user, otp); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiNotifier) SendTaxReminder(user *models.User, vehicle *models.Vehicle) error {
	var firstErr error
	for _, n := range m {
		if err := n.SendTaxReminder(user, vehicle); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NoopNotifier drops every notification, for tests and unconfigured
// deployments
type NoopNotifier struct{}

func (NoopNotifier) SendOTP(*models.User, string) error { return nil }

func (NoopNotifier) SendTaxReminder(*models.User, *models.Vehicle) error { return nil }
