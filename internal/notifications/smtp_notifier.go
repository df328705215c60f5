package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPNotifier delivers the OTP over plain SMTP with AUTH PLAIN. net/smtp
// has no context support, so the send runs in a goroutine and the wrapper
// honors ctx cancellation itself.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendOTPEmail(ctx context.Context, in SendOTPEmailInput) error {
	msg := buildOTPMessage(n.cfg.From, in)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)

	errCh := make(chan error, 1)

	go func() {
		errCh <- smtp.SendMail(addr, auth, n.cfg.From, []string{in.Email}, msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildOTPMessage(from string, in SendOTPEmailInput) []byte {
	minutes := int(time.Until(in.ExpiresAt).Round(time.Minute).Minutes())

	if minutes < 1 {
		minutes = 1
	}

	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + in.Email + "\r\n")
	b.WriteString("Subject: Your OTP Code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your OTP is %s. It will expire in %d minutes.\r\n", in.Code, minutes)

	return []byte(b.String())
}
