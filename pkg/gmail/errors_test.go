package gmail

import (
	"errors"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name  string
		in    error
		check func(error) bool
		want  bool
	}{
		{
			name:  "401 is auth",
			in:    &googleapi.Error{Code: 401},
			check: IsAuthError,
			want:  true,
		},
		{
			name:  "404 is not found",
			in:    &googleapi.Error{Code: 404},
			check: IsNotFoundError,
			want:  true,
		},
		{
			name:  "429 is rate limit",
			in:    &googleapi.Error{Code: 429},
			check: IsRateLimitError,
			want:  true,
		},
		{
			name: "403 with rate reason is rate limit",
			in: &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{
				{Reason: "userRateLimitExceeded"},
			}},
			check: IsRateLimitError,
			want:  true,
		},
		{
			name:  "403 quota message is rate limit",
			in:    &googleapi.Error{Code: 403, Message: "Quota exceeded for quota metric"},
			check: IsRateLimitError,
			want:  true,
		},
		{
			name:  "bare 403 is auth",
			in:    &googleapi.Error{Code: 403, Message: "insufficient scope"},
			check: IsAuthError,
			want:  true,
		},
		{
			name:  "token refresh failure is auth",
			in:    &oauth2.RetrieveError{},
			check: IsAuthError,
			want:  true,
		},
		{
			name:  "404 is not rate limit",
			in:    &googleapi.Error{Code: 404},
			check: IsRateLimitError,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.in)
			if tt.check(got) != tt.want {
				t.Errorf("translateError(%v) classified as %T", tt.in, got)
			}
		})
	}
}

func TestTranslateErrorPassthrough(t *testing.T) {
	boom := errors.New("connection reset")
	if got := translateError(boom); got != boom {
		t.Errorf("unrecognized error must pass through unchanged, got %v", got)
	}
	if translateError(nil) != nil {
		t.Error("nil must stay nil")
	}
}

func TestTranslateErrorKeepsCause(t *testing.T) {
	cause := &googleapi.Error{Code: 429, Message: "slow down"}
	got := translateError(cause)

	var apiErr *googleapi.Error
	if !errors.As(got, &apiErr) || apiErr.Code != 429 {
		t.Errorf("translated error must unwrap to the provider error, got %v", got)
	}
}
