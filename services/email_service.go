package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailService sends registration lifecycle mails. All sends are best-effort;
// callers log failures and carry on.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService reads SMTP configuration from the environment. Returns a
// service that reports Configured() == false when SMTP_HOST is unset.
func NewEmailService() *EmailService {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getenvDefault("SMTP_FROM", "no-reply@medisetu.in"),
	}
}

func (s *EmailService) Configured() bool {
	return s.host != ""
}

func (s *EmailService) send(to, subject, body string) error {
	if !s.Configured() {
		return fmt.Errorf("SMTP not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	return d.DialAndSend(m)
}

// SendRegistrationReceived confirms a submitted registration.
func (s *EmailService) SendRegistrationReceived(to, name, role string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s registration on Medisetu has been received and is under review. "+
			"We will notify you once it has been processed.</p><p>— Team Medisetu</p>",
		name, role)
	return s.send(to, "Medisetu: registration received", body)
}

// SendReviewResult notifies the applicant of the admin decision.
func (s *EmailService) SendReviewResult(to, name string, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>Your Medisetu registration has been approved. "+
				"You can now log in with your registered phone number.</p><p>— Team Medisetu</p>",
			name)
		return s.send(to, "Medisetu: registration approved", body)
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We are sorry, your Medisetu registration could not be approved.</p>", name)
	if reason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", reason)
	}
	body += "<p>— Team Medisetu</p>"
	return s.send(to, "Medisetu: registration update", body)
}
