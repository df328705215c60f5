package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes the OTP to the server log instead of sending mail.
// Development only; it is wired in exclusively behind the explicit
// OTP_DEV_MODE flag, never as a silent fallback for missing SMTP config.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendOTPEmail(ctx context.Context, in SendOTPEmailInput) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	log.Printf("notification.otp_email email=%s name=%s code=%s expires_at=%s",
		in.Email, in.Name, in.Code, in.ExpiresAt.Format(time.RFC3339),
	)
	return nil
}
