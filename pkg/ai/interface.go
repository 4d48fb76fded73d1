package ai

import "context"

// ReplyGenerator produces an HTML reply template from a free-form prompt.
// The output may contain {{sender_name}}, {{sender_email}} and {{subject}}
// placeholders for the renderer. Implement this interface to add new
// providers.
type ReplyGenerator interface {
	GenerateReplyTemplate(ctx context.Context, prompt string) (string, error)
}
