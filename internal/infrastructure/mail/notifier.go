// Package mail delivers the digest over an implicit-TLS SMTP session.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	gomail "github.com/wneessen/go-mail"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

const subjectPrefix = "AI Papers Daily Summary"

// ErrMissingEmailConfig means sender, password or recipient is unset.
var ErrMissingEmailConfig = errors.New("missing required email configuration")

// Notifier sends the rendered digest to one recipient.
type Notifier struct {
	cfg    config.EmailConfig
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier binds the relay settings; now stamps the subject (nil means time.Now).
func NewNotifier(cfg config.EmailConfig, now func() time.Time, log *slog.Logger) *Notifier {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Notifier{cfg: cfg, now: now, logger: log}
}

// Send validates configuration, then dials the relay and transmits one message.
func (n *Notifier) Send(ctx context.Context, body string) error {
	if err := n.validate(); err != nil {
		return err
	}

	msg, err := n.buildMessage(body)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(n.cfg.Host,
		gomail.WithPort(n.cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.cfg.Sender),
		gomail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email sent", "recipient", n.cfg.Recipient, "host", n.cfg.Host)
	return nil
}

func (n *Notifier) validate() error {
	var missing []string
	if strings.TrimSpace(n.cfg.Sender) == "" {
		missing = append(missing, "sender")
	}
	if n.cfg.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(n.cfg.Recipient) == "" {
		missing = append(missing, "recipient")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEmailConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Subject returns the dated subject line.
func (n *Notifier) Subject() string {
	return fmt.Sprintf("%s - %s", subjectPrefix, n.now().Format("2006-01-02"))
}

func (n *Notifier) buildMessage(body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(n.Subject())
	msg.SetBodyString(gomail.TypeTextPlain, plainFallback(body))
	msg.AddAlternativeString(gomail.TypeTextHTML, body)
	return msg, nil
}

func plainFallback(body string) string {
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(body))
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
