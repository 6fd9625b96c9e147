package channel

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailAdapter delivers messages over SMTP.
type EmailAdapter struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func NewEmailAdapter(host string, port int, username, password, fromEmail, fromName string) *EmailAdapter {
	return &EmailAdapter{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
	}
}

func (a *EmailAdapter) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", a.FromEmail, a.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	dialer := gomail.NewDialer(a.Host, a.Port, a.Username, a.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
