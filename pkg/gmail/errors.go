package gmail

import (
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// AuthError means the credential's access token could not be refreshed, or
// the provider rejected the authorization. Fatal for that user's rules
// within a run.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "gmail auth error: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError means the provider is throttling. Callers should back off
// and abort remaining messages for the rule rather than hot-loop.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return "gmail rate limited: " + e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// NotFoundError means the message vanished between search and fetch.
// Benign: the message was concurrently handled.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string { return "gmail message not found: " + e.Err.Error() }
func (e *NotFoundError) Unwrap() error { return e.Err }

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func IsRateLimitError(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}

func IsNotFoundError(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// rate/quota reasons Gmail reports under HTTP 403.
var rateLimitReasons = []string{
	"rateLimitExceeded",
	"userRateLimitExceeded",
	"quotaExceeded",
	"dailyLimitExceeded",
}

// translateError maps provider failures onto the error taxonomy. Anything
// unrecognized passes through unchanged for the caller to attribute to the
// smallest enclosing unit.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		// Refresh of the access token failed; an invalid_grant here means
		// the stored refresh token itself is dead.
		return &AuthError{Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			return &AuthError{Err: err}
		case 404:
			return &NotFoundError{Err: err}
		case 429:
			return &RateLimitError{Err: err}
		case 403:
			for _, e := range apiErr.Errors {
				for _, reason := range rateLimitReasons {
					if e.Reason == reason {
						return &RateLimitError{Err: err}
					}
				}
			}
			if strings.Contains(apiErr.Message, "Quota") || strings.Contains(apiErr.Message, "quota") {
				return &RateLimitError{Err: err}
			}
			return &AuthError{Err: err}
		}
	}

	return err
}
