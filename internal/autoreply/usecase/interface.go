package usecase

import (
	"context"

	"autoreply-backend/internal/autoreply/domain"
)

// MailboxGateway is the slice of the mail provider the job needs. pkg/gmail
// implements it; tests substitute fakes. Every call takes the per-user
// credential explicitly, so no client state is shared across users.
type MailboxGateway interface {
	Search(ctx context.Context, cred domain.Credential, query string, maxResults int64) ([]domain.MessageRef, error)
	FetchDetail(ctx context.Context, cred domain.Credential, id string) (*domain.MessageDetail, error)
	SendReply(ctx context.Context, cred domain.Credential, raw []byte, threadID string) (string, error)
	ModifyLabels(ctx context.Context, cred domain.Credential, id string, add, remove []string) error
	EnsureLabel(ctx context.Context, cred domain.Credential, name string) (string, error)
}

// JobRunner executes one pass over all active rules.
type JobRunner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}
