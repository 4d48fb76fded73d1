package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"autoreply-backend/internal/autoreply/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenRefreshFunc persists a rotated access token for a user.
type TokenRefreshFunc func(userID string, token *oauth2.Token) error

// Service wraps the Gmail API. It holds only the app credentials; the
// per-user credential is an explicit parameter on every call, so nothing
// user-scoped is shared across concurrent invocations.
type Service struct {
	clientID       string
	clientSecret   string
	onTokenRefresh TokenRefreshFunc
}

func NewService(clientID, clientSecret string, onTokenRefresh TokenRefreshFunc) *Service {
	return &Service{
		clientID:       clientID,
		clientSecret:   clientSecret,
		onTokenRefresh: onTokenRefresh,
	}
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	userID   string
	callback TokenRefreshFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(s.userID, t); err != nil {
			fmt.Printf("Failed to update token for user %s: %v\n", s.userID, err)
		}
	}
	return t, nil
}

// client builds a scoped Gmail client for one credential. The token source
// transparently refreshes an expired access token from the refresh token
// before each call; callers only see an AuthError when the refresh token
// itself is invalid.
func (s *Service) client(ctx context.Context, cred domain.Credential) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if cred.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		userID:   cred.UserID,
		callback: s.onTokenRefresh,
	}

	httpClient := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// Search lists message refs matching a provider query. Result ordering is
// provider-defined, typically most-recent-first.
func (s *Service) Search(ctx context.Context, cred domain.Credential, query string, maxResults int64) ([]domain.MessageRef, error) {
	srv, err := s.client(ctx, cred)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	refs := make([]domain.MessageRef, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		if msg.Id == "" || msg.ThreadId == "" {
			continue
		}
		refs = append(refs, domain.MessageRef{ID: msg.Id, ThreadID: msg.ThreadId})
	}
	return refs, nil
}

// FetchDetail retrieves a message's headers and body.
func (s *Service) FetchDetail(ctx context.Context, cred domain.Credential, id string) (*domain.MessageDetail, error) {
	srv, err := s.client(ctx, cred)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	detail := &domain.MessageDetail{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     getHeader(msg.Payload, "From"),
		Subject:  getHeader(msg.Payload, "Subject"),
		Body:     getBody(msg.Payload),
	}
	if detail.Subject == "" {
		detail.Subject = "(No Subject)"
	}
	return detail, nil
}

// SendReply submits a raw RFC 2822 message into an existing thread so the
// reply threads correctly in both mail clients. Returns the sent message id.
func (s *Service) SendReply(ctx context.Context, cred domain.Credential, raw []byte, threadID string) (string, error) {
	srv, err := s.client(ctx, cred)
	if err != nil {
		return "", err
	}

	msg := &gmail.Message{
		// Gmail requires URL-safe base64 without padding as the transport
		// encoding of the raw message.
		Raw:      base64.RawURLEncoding.EncodeToString(raw),
		ThreadId: threadID,
	}

	sent, err := srv.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", translateError(err)
	}
	return sent.Id, nil
}

// ModifyLabels adds and/or removes labels on a message.
func (s *Service) ModifyLabels(ctx context.Context, cred domain.Credential, id string, add, remove []string) error {
	srv, err := s.client(ctx, cred)
	if err != nil {
		return err
	}

	modifyReq := &gmail.ModifyMessageRequest{}
	if len(add) > 0 {
		modifyReq.AddLabelIds = add
	}
	if len(remove) > 0 {
		modifyReq.RemoveLabelIds = remove
	}

	_, err = srv.Users.Messages.Modify("me", id, modifyReq).Context(ctx).Do()
	if err != nil {
		return translateError(err)
	}
	return nil
}

// EnsureLabel finds a user label by name, creating it when absent, and
// returns its id. The auto-reply job uses this to provision the handled
// marker label.
func (s *Service) EnsureLabel(ctx context.Context, cred domain.Credential, name string) (string, error) {
	srv, err := s.client(ctx, cred)
	if err != nil {
		return "", err
	}

	labelsResp, err := srv.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", translateError(err)
	}
	for _, label := range labelsResp.Labels {
		if label.Name == name {
			return label.Id, nil
		}
	}

	created, err := srv.Users.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", translateError(err)
	}
	return created.Id, nil
}

// Helper functions

func getHeader(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, header := range payload.Headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

func getBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	// If the payload itself is the body
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(data)
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					switch part.MimeType {
					case "text/html":
						htmlBody = string(data)
					case "text/plain":
						plainBody = string(data)
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	// Prefer the plain part for substring matching against rule conditions.
	if plainBody != "" {
		return plainBody
	}
	return htmlBody
}
