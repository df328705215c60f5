package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/surpriselly/authsvc/internal/jobs"
)

func TestOTPEmailHandler(t *testing.T) {
	var got SendOTPEmailInput

	inner := &stubNotifier{
		sendFn: func(ctx context.Context, input SendOTPEmailInput) error {
			got = input
			return nil
		},
	}

	h := NewOTPEmailHandler(inner)

	expiresAt := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second)

	b, err := jobs.EncodePayload(jobs.JobSendOTPEmail, jobs.SendOTPEmailPayload{
		UserID:    "user-1",
		Email:     "a@x.com",
		Name:      "Alice",
		Code:      "042137",
		ExpiresAt: expiresAt,
	})

	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobSendOTPEmail, b)

	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := h(context.Background(), j); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if got.Email != "a@x.com" || got.Name != "Alice" || got.Code != "042137" || !got.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("notifier input mismatch: %+v", got)
	}
}

func TestOTPEmailHandlerRejectsBadPayload(t *testing.T) {
	h := NewOTPEmailHandler(&stubNotifier{})

	j := jobs.Job{ID: "x", Type: jobs.JobSendOTPEmail, Payload: []byte("{not json")}

	if err := h(context.Background(), j); err == nil {
		t.Fatalf("expected a decode error")
	}
}
