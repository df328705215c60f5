package handlers_test

import (
	"net/http"
	"testing"

	"github.com/surpriselly/authsvc/internal/http/handlers"
)

type bindErrorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func TestBindValidationErrors(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserStore{}, &fakeOTPManager{}, newJWTManager(), &fakeEnqueuer{}, testConfig(), discardLogger())
	r := setupRouter(http.MethodPost, "/signup", h.SignUp)

	tests := []struct {
		name      string
		body      string
		wantField string
		wantRule  string
	}{
		{
			name:      "missing name",
			body:      `{"email":"a@x.com","password":"password1"}`,
			wantField: "name",
			wantRule:  "required",
		},
		{
			name:      "bad email",
			body:      `{"name":"Alice","email":"not-an-email","password":"password1"}`,
			wantField: "email",
			wantRule:  "email",
		},
		{
			name:      "short password",
			body:      `{"name":"Alice","email":"a@x.com","password":"short"}`,
			wantField: "password",
			wantRule:  "min",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/signup", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400", w.Code)
			}

			var resp bindErrorResponse
			mustUnmarshal(t, w, &resp)

			if resp.Error.Code != "invalid_request" {
				t.Fatalf("got error code %q, want invalid_request", resp.Error.Code)
			}

			found := false

			for _, f := range resp.Error.Details.Fields {
				if f.Field == tc.wantField && f.Rule == tc.wantRule {
					found = true
				}
			}

			if !found {
				t.Fatalf("no field error %s/%s in %+v", tc.wantField, tc.wantRule, resp.Error.Details.Fields)
			}
		})
	}
}

func TestBindMalformedJSON(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserStore{}, &fakeOTPManager{}, newJWTManager(), &fakeEnqueuer{}, testConfig(), discardLogger())
	r := setupRouter(http.MethodPost, "/signup", h.SignUp)

	w := doJSON(t, r, http.MethodPost, "/signup", `{"name": "Alice",`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestBindTypeMismatch(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserStore{}, &fakeOTPManager{}, newJWTManager(), &fakeEnqueuer{}, testConfig(), discardLogger())
	r := setupRouter(http.MethodPost, "/signup", h.SignUp)

	w := doJSON(t, r, http.MethodPost, "/signup", `{"name":42,"email":"a@x.com","password":"password1"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}
