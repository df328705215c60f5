package user

import "time"

// User is the single persistent record of the auth lifecycle. The reset
// fields are only populated between a forgot-password request and either a
// successful reset or expiry.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	ResetCode    *string    `json:"-"`
	ResetCodeExp *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasActiveResetCode reports whether a reset code is present and not yet
// expired at the given instant.
func (u User) HasActiveResetCode(now time.Time) bool {
	return u.ResetCode != nil && u.ResetCodeExp != nil && now.Before(*u.ResetCodeExp)
}
