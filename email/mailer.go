// Package email delivers security and password-reset codes over SMTP.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender is what the registration flow needs from a mailer. Tests substitute
// a recording implementation.
type Sender interface {
	SendSecurityCode(to, code string, isAdmin bool) error
	SendPasswordResetCode(to, code string) error
}

// Mailer sends through a single SMTP account. Each send dials a fresh
// connection; volume is a handful of codes per registration.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, password string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

func (m *Mailer) SendSecurityCode(to, code string, isAdmin bool) error {
	subject := "User Registration Security Code"
	if isAdmin {
		subject = "Admin Registration Security Code"
	}
	body := fmt.Sprintf("Your security code is: %s. Please use this code to complete your registration.", code)
	return m.send(to, subject, body)
}

func (m *Mailer) SendPasswordResetCode(to, code string) error {
	body := fmt.Sprintf("Your password reset code is: %s. Please use this code to reset your password.", code)
	return m.send(to, "Password Reset Code", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
