// Package notify delivers out-of-band messages (email, SMS) for the election
// service. Delivery is always asynchronous: transactional paths enqueue
// through the Dispatcher and never wait on a gateway.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer sends a single email. Implementations: MailerSend, SMTP, dev.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// SMSSender sends a single text message.
type SMSSender interface {
	SendSMS(ctx context.Context, mobile, message string) error
}

// DevMailer logs messages instead of sending them. Used when no provider is
// configured (local development, tests).
type DevMailer struct {
	Log zerolog.Logger
}

func (d *DevMailer) SendEmail(_ context.Context, to, subject, _ string) error {
	d.Log.Info().Str("to", to).Str("subject", subject).Msg("dev mailer: email suppressed")
	return nil
}

func (d *DevMailer) SendSMS(_ context.Context, mobile, message string) error {
	d.Log.Info().Str("mobile", mobile).Str("message", message).Msg("dev mailer: sms suppressed")
	return nil
}
