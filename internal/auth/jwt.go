package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed token, expiry, wrong purpose. Callers get no distinction.
var ErrInvalidToken = errors.New("invalid token")

// Token purposes. A reset token must never pass where a session token is
// expected, and vice versa.
const (
	PurposeSession = "session"
	PurposeReset   = "password_reset"
)

type Claims struct {
	UserID  string `json:"sub"`
	Purpose string `json:"typ"`
	JTI     string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewManager(secret string, sessionTTL, resetTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// IssueSessionToken mints the bearer token returned by signup and login.
func (m *Manager) IssueSessionToken(userID string) (string, error) {
	return m.issue(userID, PurposeSession, m.sessionTTL)
}

// IssueResetToken mints the short-lived token handed out after a successful
// OTP verification. It authorizes exactly one password change.
func (m *Manager) IssueResetToken(userID string) (string, error) {
	return m.issue(userID, PurposeReset, m.resetTTL)
}

func (m *Manager) issue(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		JTI:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

func (m *Manager) VerifySessionToken(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, PurposeSession)
}

func (m *Manager) VerifyResetToken(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, PurposeReset)
}

func (m *Manager) verify(tokenStr, purpose string) (*Claims, error) {
	claims, err := m.parseAndValidate(tokenStr)

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) parseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
