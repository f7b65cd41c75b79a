package email

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendEmail sends a plain text email using SMTP.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_SENDER")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := smtpHost + ":" + smtpPort

	if err := smtp.SendMail(address, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// Sender abstracts outgoing mail so services can be tested without SMTP.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender is the production Sender backed by SendEmail.
type SMTPSender struct{}

func (SMTPSender) Send(to, subject, body string) error {
	return SendEmail(to, subject, body)
}
