// Package mail delivers outbound email over SMTP.
//
//	m := mail.New(mail.FromConfig())
//	err := m.Send(ctx, mail.Message{
//	    To:      []string{"jane@example.com"},
//	    Subject: "Password reset",
//	    HTML:    body,
//	})
//
// When MAIL_HOST is empty New returns a mailer that only logs.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// ------------------- Config -------------------

// Config holds connection credentials (populated from env/config).
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func FromConfig() Config {
	return Config{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "shop@storefront.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Storefront"),
	}
}

// ------------------- Message -------------------

// Message is one outbound email. HTML wins over Text when both are set.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

var ErrNoRecipients = errors.New("mail: no recipients")

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New picks SMTP when a host is configured and a log-only mailer otherwise.
func New(cfg Config) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTP{cfg: cfg}
}

// Render executes tmpl with data into an HTML body.
func Render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// ------------------- SMTP -------------------

// SMTP delivers through an SMTP relay. Port 465 uses implicit TLS; other
// ports upgrade with STARTTLS when the server offers it.
type SMTP struct {
	cfg Config
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	cfg := s.cfg
	raw := Build(cfg, m, time.Now())
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	var d net.Dialer
	var conn net.Conn
	var err error
	if cfg.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: &d, Config: &tls.Config{ServerName: cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline) //nolint:errcheck
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}
	if cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	for _, to := range m.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// Build renders the RFC 5322 message. Header values are stripped of CR/LF.
func Build(cfg Config, m Message, now time.Time) []byte {
	contentType, body := "text/plain", m.Text
	if m.HTML != "" {
		contentType, body = "text/html", m.HTML
	}

	var b strings.Builder
	b.WriteString("From: " + header(cfg.FromName) + " <" + header(cfg.From) + ">\r\n")
	to := make([]string, len(m.To))
	for i, addr := range m.To {
		to[i] = header(addr)
	}
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + header(m.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func header(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}

// ------------------- Log -------------------

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	logger.WithCtx(ctx).Info("mail: not sent (MAIL_HOST unset)",
		"to", strings.Join(m.To, ","), "subject", m.Subject)
	return nil
}
