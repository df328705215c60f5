package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/surpriselly/authsvc/internal/domain/user"
	"github.com/surpriselly/authsvc/internal/repo"
)

var ErrInvalidOrExpiredCode = errors.New("invalid or expired otp")

// codeSpace is the number of distinct 6-digit codes, 000000 through 999999.
const codeSpace = 1000000

// GenerateCode draws a 6-digit code uniformly from the full range, keeping
// leading zeros.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))

	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// UserStore is the slice of the users repo the OTP manager needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, id string) error
}

type Manager struct {
	store UserStore
	ttl   time.Duration
}

func NewManager(store UserStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Manager{store: store, ttl: ttl}
}

// Issue generates a fresh code for the user and persists it with its expiry.
// A second Issue before the first code is used simply overwrites it.
func (m *Manager) Issue(ctx context.Context, u user.User) (code string, expiresAt time.Time, err error) {
	code, err = GenerateCode()

	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt = time.Now().UTC().Add(m.ttl)

	err = m.store.SetResetCode(ctx, u.ID, code, expiresAt)

	if err != nil {
		return "", time.Time{}, err
	}

	return code, expiresAt, nil
}

// Validate checks the presented code against the stored one. The code is
// cleared on first success, so it cannot be replayed even before the final
// password reset lands.
func (m *Manager) Validate(ctx context.Context, email, code string) (user.User, error) {
	u, err := m.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return user.User{}, ErrInvalidOrExpiredCode
		}

		return user.User{}, err
	}

	now := time.Now().UTC()

	if !u.HasActiveResetCode(now) {
		return user.User{}, ErrInvalidOrExpiredCode
	}

	if subtle.ConstantTimeCompare([]byte(*u.ResetCode), []byte(code)) != 1 {
		return user.User{}, ErrInvalidOrExpiredCode
	}

	// single-use: burn the code now, the reset token takes over from here

	err = m.store.ClearResetCode(ctx, u.ID)

	if err != nil {
		return user.User{}, err
	}

	u.ResetCode = nil
	u.ResetCodeExp = nil

	return u, nil
}
