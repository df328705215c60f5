package otp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/surpriselly/authsvc/internal/otp"
	"github.com/surpriselly/authsvc/internal/repo/memory"
)

func TestGenerateCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := otp.GenerateCode()

		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("got code %q, want 6 digits", code)
		}

		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
	}
}

func TestIssueStoresCodeWithExpiry(t *testing.T) {
	store := memory.NewUsersRepo()
	ctx := context.Background()

	u, err := store.Create(ctx, "Alice", "a@x.com", "hashed")

	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	m := otp.NewManager(store, 10*time.Minute)

	code, expiresAt, err := m.Issue(ctx, u)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if len(code) != 6 {
		t.Fatalf("got code %q, want 6 digits", code)
	}

	until := time.Until(expiresAt)

	if until <= 9*time.Minute || until > 10*time.Minute {
		t.Fatalf("expiry %v not within expected window", until)
	}

	stored, err := store.GetByEmail(ctx, "a@x.com")

	if err != nil {
		t.Fatalf("get user: %v", err)
	}

	if stored.ResetCode == nil || *stored.ResetCode != code {
		t.Fatalf("stored code mismatch")
	}
}

func TestValidateHappyPathClearsCode(t *testing.T) {
	store := memory.NewUsersRepo()
	ctx := context.Background()

	u, _ := store.Create(ctx, "Alice", "a@x.com", "hashed")

	m := otp.NewManager(store, 10*time.Minute)

	code, _, err := m.Issue(ctx, u)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got, err := m.Validate(ctx, "a@x.com", code)

	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if got.ID != u.ID {
		t.Fatalf("got user %q, want %q", got.ID, u.ID)
	}

	// single-use: the same code must not validate twice

	if _, err := m.Validate(ctx, "a@x.com", code); !errors.Is(err, otp.ErrInvalidOrExpiredCode) {
		t.Fatalf("expected second validate to fail, got %v", err)
	}
}

func TestValidateRejectsWrongCode(t *testing.T) {
	store := memory.NewUsersRepo()
	ctx := context.Background()

	u, _ := store.Create(ctx, "Alice", "a@x.com", "hashed")

	m := otp.NewManager(store, 10*time.Minute)

	code, _, err := m.Issue(ctx, u)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrong := "000000"

	if wrong == code {
		wrong = "000001"
	}

	if _, err := m.Validate(ctx, "a@x.com", wrong); !errors.Is(err, otp.ErrInvalidOrExpiredCode) {
		t.Fatalf("expected wrong code to fail, got %v", err)
	}

	// the stored code survives a failed attempt

	if _, err := m.Validate(ctx, "a@x.com", code); err != nil {
		t.Fatalf("correct code should still work, got %v", err)
	}
}

func TestValidateRejectsExpiredCode(t *testing.T) {
	store := memory.NewUsersRepo()
	ctx := context.Background()

	u, _ := store.Create(ctx, "Alice", "a@x.com", "hashed")

	m := otp.NewManager(store, 10*time.Minute)

	code, _, err := m.Issue(ctx, u)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := store.ExpireResetCode(u.ID); err != nil {
		t.Fatalf("expire code: %v", err)
	}

	if _, err := m.Validate(ctx, "a@x.com", code); !errors.Is(err, otp.ErrInvalidOrExpiredCode) {
		t.Fatalf("expected expired code to fail, got %v", err)
	}
}

func TestValidateUnknownEmail(t *testing.T) {
	store := memory.NewUsersRepo()

	m := otp.NewManager(store, 10*time.Minute)

	if _, err := m.Validate(context.Background(), "nobody@x.com", "123456"); !errors.Is(err, otp.ErrInvalidOrExpiredCode) {
		t.Fatalf("expected unknown email to fail with the generic error, got %v", err)
	}
}

func TestValidateWithoutIssuedCode(t *testing.T) {
	store := memory.NewUsersRepo()
	ctx := context.Background()

	_, _ = store.Create(ctx, "Alice", "a@x.com", "hashed")

	m := otp.NewManager(store, 10*time.Minute)

	if _, err := m.Validate(ctx, "a@x.com", "123456"); !errors.Is(err, otp.ErrInvalidOrExpiredCode) {
		t.Fatalf("expected validate with no issued code to fail, got %v", err)
	}
}
