package repository

import (
	"context"
	"time"
)

// SMTPSettings are the credentials used to reach a mail server.
type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Secure forces implicit TLS. Port 465 always uses it.
	Secure bool
}

// MailMessage is an outgoing email. Text or HTML may be empty, not both.
type MailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MailRepository sends email through SMTP.
type MailRepository interface {
	Send(ctx context.Context, settings SMTPSettings, msg MailMessage) error
	// Verify opens and authenticates an SMTP connection, then closes it.
	Verify(ctx context.Context, settings SMTPSettings, timeout time.Duration) error
}
