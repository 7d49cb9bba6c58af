package mailer

import (
	"bytes"
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/GringoXY/4-gamers-mailing/internal/config"
)

// SMTPSender delivers emails over SMTP. Every Send opens a fresh session and
// tears it down afterwards; sends within a batch are independent.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()

	if err := msg.FromFormat(s.cfg.SenderName, s.cfg.Username); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.cfg.Username, err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", email.To, err)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTMLBody)

	if email.Attachment != nil {
		err := msg.AttachReader(
			email.Attachment.Filename,
			bytes.NewReader(email.Attachment.Content),
			mail.WithFileContentType("application/pdf"),
		)
		if err != nil {
			return fmt.Errorf("failed to attach %s: %w", email.Attachment.Filename, err)
		}
	}

	tlsPolicy := mail.TLSOpportunistic
	if s.cfg.UseTLS {
		tlsPolicy = mail.TLSMandatory
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(tlsPolicy),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}

	return nil
}
