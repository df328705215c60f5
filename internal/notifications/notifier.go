package notifications

import (
	"context"
	"time"
)

type SendOTPEmailInput struct {
	Email     string
	Name      string
	Code      string
	ExpiresAt time.Time
}

type Notifier interface {
	SendOTPEmail(ctx context.Context, input SendOTPEmailInput) error
}
