package security_test

import (
	"strings"
	"testing"

	"github.com/surpriselly/authsvc/internal/security"
)

func TestHashPasswordNeverEqualsPlaintext(t *testing.T) {
	plain := "super-secret-pw"

	hash, err := security.HashPassword(plain)

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == plain {
		t.Fatalf("hash must not equal plaintext")
	}

	if strings.Contains(hash, plain) {
		t.Fatalf("hash must not contain plaintext")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery staple")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := security.CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	if err := security.CheckPassword(hash, "wrong password"); err == nil {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := security.HashPassword("same input")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	h2, err := security.HashPassword("same input")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// bcrypt embeds a random salt, so two hashes of one password differ
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same password")
	}
}
