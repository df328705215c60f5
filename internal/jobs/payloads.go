package jobs

import "time"

// SendOTPEmailPayload carries everything the mail worker needs to deliver a
// password-reset code. The code itself has to ride along: it is cleared from
// the user record on first use, so the worker cannot re-read it later.
type SendOTPEmailPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	RequestID string    `json:"requestId,omitempty"` // optional: correlation
}
