// Package notify delivers alert and digest messages by e-mail or to the log.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"thot/internal/log"
)

// Message is a plain-text notification.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers messages to the configured recipients.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	From       string
	Recipients []string
}

// EmailNotifier sends messages over SMTP.
type EmailNotifier struct {
	cfg    SMTPConfig
	logger *log.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewEmailNotifier(cfg SMTPConfig, logger *log.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentNotify),
		send:   func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, m Message) error {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = n.cfg.Recipients
	e.Subject = m.Subject
	e.Text = []byte(m.Body)

	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(e, addr, auth); err != nil {
		n.logger.ErrorContext(ctx, "Failed to send email",
			log.FieldOperation, log.OpNotify,
			"subject", m.Subject,
			log.FieldError, err.Error())
		return fmt.Errorf("send email %q: %w", m.Subject, err)
	}

	n.logger.InfoContext(ctx, "Email sent",
		log.FieldOperation, log.OpNotify,
		"subject", m.Subject,
		"recipients", len(n.cfg.Recipients))
	return nil
}

// LogNotifier writes messages to the log. Used when SMTP is not configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) Notify(ctx context.Context, m Message) error {
	n.logger.InfoContext(ctx, "Notification",
		log.FieldOperation, log.OpNotify,
		"subject", m.Subject,
		"body", m.Body)
	return nil
}
