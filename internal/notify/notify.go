// Package notify delivers anomaly reports out-of-band. Delivery failures are
// never fatal to a run; the report already went to the configured output.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// NoopNotifier discards every message.
type NoopNotifier struct{}

// Send does nothing.
func (NoopNotifier) Send(subject, body string) error { return nil }

// SMTPNotifier sends plain-text mail through an unauthenticated relay, the
// usual setup for batch hosts inside a datacenter.
type SMTPNotifier struct {
	host string
	from string
	to   []string
}

// NewSMTPNotifier builds an SMTPNotifier. host is "host:port".
func NewSMTPNotifier(host, from string, to []string) *SMTPNotifier {
	return &SMTPNotifier{host: host, from: from, to: to}
}

// Send delivers one message to all recipients.
func (n *SMTPNotifier) Send(subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(n.host, nil, n.from, n.to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", n.host, err)
	}
	return nil
}

// NewNotifier returns the Notifier matching the configured mode.
func NewNotifier(cfg *contract.Config) contract.Notifier {
	if cfg.Notify == schema.SMTPNotify {
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPFrom, cfg.SMTPTo)
	}
	return NoopNotifier{}
}
