package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/surpriselly/authsvc/internal/auth"
)

const testSecret = "test-secret-key"

func newManager() *auth.Manager {
	return auth.NewManager(testSecret, 7*24*time.Hour, 15*time.Minute)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := newManager()

	token, err := m.IssueSessionToken("user-123")

	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	claims, err := m.VerifySessionToken(token)

	if err != nil {
		t.Fatalf("VerifySessionToken failed: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Fatalf("got user id %q, want %q", claims.UserID, "user-123")
	}

	if claims.Purpose != auth.PurposeSession {
		t.Fatalf("got purpose %q, want %q", claims.Purpose, auth.PurposeSession)
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	m := newManager()

	token, err := m.IssueResetToken("user-123")

	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	claims, err := m.VerifyResetToken(token)

	if err != nil {
		t.Fatalf("VerifyResetToken failed: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Fatalf("got user id %q, want %q", claims.UserID, "user-123")
	}
}

func TestPurposesAreNotInterchangeable(t *testing.T) {
	m := newManager()

	session, err := m.IssueSessionToken("user-123")

	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	reset, err := m.IssueResetToken("user-123")

	if err != nil {
		t.Fatalf("IssueResetToken failed: %v", err)
	}

	if _, err := m.VerifyResetToken(session); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("session token must not pass reset verification, got %v", err)
	}

	if _, err := m.VerifySessionToken(reset); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("reset token must not pass session verification, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := auth.NewManager(testSecret, -time.Minute, -time.Minute)

	token, err := m.IssueSessionToken("user-123")

	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	if _, err := m.VerifySessionToken(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m := newManager()

	token, err := m.IssueSessionToken("user-123")

	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"

	if _, err := m.VerifySessionToken(tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := newManager()
	other := auth.NewManager("a-different-secret", 7*24*time.Hour, 15*time.Minute)

	token, err := m.IssueSessionToken("user-123")

	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	if _, err := other.VerifySessionToken(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken under wrong secret, got %v", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	m := newManager()

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.VerifySessionToken(tok); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}
