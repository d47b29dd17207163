package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrDialTimeout is returned by Verify when the server did not answer in time.
var ErrDialTimeout = errors.New("smtp connection timed out")

// SMTPMailer sends mail with gomail, dialing per message with the settings
// passed in. SMTP credentials live in the application config and may change
// at runtime, so no connection is kept.
type SMTPMailer struct {
	logger *zap.Logger
}

// NewSMTPMailer builds the mailer.
func NewSMTPMailer(logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{logger: logger}
}

var _ repository.MailRepository = (*SMTPMailer)(nil)

func newDialer(settings repository.SMTPSettings) *gomail.Dialer {
	d := gomail.NewDialer(settings.Host, settings.Port, settings.User, settings.Password)
	if settings.Secure {
		d.SSL = true
	}
	return d
}

// BuildMessage renders msg into a gomail message with a text part and an
// HTML alternative when both are present.
func BuildMessage(from string, msg repository.MailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m
}

// Send delivers msg. The message is sent from settings.From, or from the SMTP
// user when no sender is configured.
func (s *SMTPMailer) Send(ctx context.Context, settings repository.SMTPSettings, msg repository.MailMessage) error {
	from := settings.From
	if from == "" {
		from = settings.User
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- newDialer(settings).DialAndSend(BuildMessage(from, msg))
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Failed to send email",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.String("host", settings.Host),
				zap.Error(err),
			)
			return fmt.Errorf("failed to send email: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// Verify dials and authenticates against the server, giving up after timeout.
func (s *SMTPMailer) Verify(ctx context.Context, settings repository.SMTPSettings, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		conn, err := newDialer(settings).Dial()
		if err != nil {
			errCh <- err
			return
		}
		errCh <- conn.Close()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Warn("SMTP verification failed",
				zap.String("host", settings.Host),
				zap.Int("port", settings.Port),
				zap.Error(err),
			)
		}
		return err
	case <-ctx.Done():
		s.logger.Warn("SMTP verification timed out",
			zap.String("host", settings.Host),
			zap.Int("port", settings.Port),
			zap.Duration("timeout", timeout),
		)
		return ErrDialTimeout
	}
}
