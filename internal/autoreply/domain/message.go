package domain

import "golang.org/x/oauth2"

// TokenUpdateFunc is a callback invoked when the provider rotates the
// short-lived access token, so the new token can be persisted.
type TokenUpdateFunc = func(token *oauth2.Token) error

// Credential is the per-user mailbox credential. The refresh token is the
// durable part; the access token is a cache that the gateway refreshes
// transparently. Never shared across users.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// Usable reports whether the credential can be exchanged for mailbox access.
func (c Credential) Usable() bool {
	return c.RefreshToken != ""
}

// MessageRef is a lightweight search result entry.
type MessageRef struct {
	ID       string
	ThreadID string
}

// MessageDetail is a fetched message. Provider-owned and transient: it is
// never persisted, always fetched fresh each run.
type MessageDetail struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Body     string
}
