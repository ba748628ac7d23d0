package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text mail through an authenticated SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return &SMTPMailer{client: c, from: cfg.From}, nil
}

func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat("Museum Tickets", from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

// Noop drops messages; used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("mail_skipped to=%s subject=%q", to, subject)
	return nil
}
