package notifications

import (
	"context"

	"github.com/surpriselly/authsvc/internal/jobs"
	"github.com/surpriselly/authsvc/internal/queue"
)

// NewOTPEmailHandler adapts a Notifier into a queue handler for
// send_otp_email jobs.
func NewOTPEmailHandler(n Notifier) queue.Handler {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)

		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.SendOTPEmailPayload)

		if !ok {
			return jobs.ErrPayloadTypeMismatch
		}

		return n.SendOTPEmail(ctx, SendOTPEmailInput{
			Email:     p.Email,
			Name:      p.Name,
			Code:      p.Code,
			ExpiresAt: p.ExpiresAt,
		})
	}
}
