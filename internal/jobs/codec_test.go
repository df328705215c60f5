package jobs_test

import (
	"errors"
	"testing"
	"time"

	"github.com/surpriselly/authsvc/internal/jobs"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	payload := jobs.SendOTPEmailPayload{
		UserID:    "user-1",
		Email:     "a@x.com",
		Name:      "Alice",
		Code:      "042137",
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second),
	}

	b, err := jobs.EncodePayload(jobs.JobSendOTPEmail, payload)

	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobSendOTPEmail, b)

	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	got, ok := decoded.(jobs.SendOTPEmailPayload)

	if !ok {
		t.Fatalf("decoded payload has wrong type %T", decoded)
	}

	if got.Code != payload.Code || got.Email != payload.Email || !got.ExpiresAt.Equal(payload.ExpiresAt) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, payload)
	}
}

func TestEncodePayloadTypeMismatch(t *testing.T) {
	_, err := jobs.EncodePayload(jobs.JobSendOTPEmail, struct{ X int }{1})

	if !errors.Is(err, jobs.ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayloadInvalidType(t *testing.T) {
	_, err := jobs.EncodePayload(jobs.JobType("nope"), jobs.SendOTPEmailPayload{})

	if !errors.Is(err, jobs.ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestNewJobRejectsUnknownType(t *testing.T) {
	_, err := jobs.NewJob(jobs.JobType("nope"), []byte(`{}`))

	if !errors.Is(err, jobs.ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestDecodeWireRoundTrip(t *testing.T) {
	b, err := jobs.EncodePayload(jobs.JobSendOTPEmail, jobs.SendOTPEmailPayload{Code: "123456"})

	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobSendOTPEmail, b)

	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	wire, err := jobs.Encode(j)

	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	back, err := jobs.Decode(wire)

	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if back.ID != j.ID || back.Type != j.Type || back.MaxTries != j.MaxTries {
		t.Fatalf("wire round trip mismatch: got %+v want %+v", back, j)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := jobs.Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected garbage to fail decode")
	}

	if _, err := jobs.Decode([]byte(`{"id":"x","type":"nope"}`)); !errors.Is(err, jobs.ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType for unknown type")
	}
}
