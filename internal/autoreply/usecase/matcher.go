package usecase

import (
	"fmt"
	"strings"

	"autoreply-backend/internal/autoreply/domain"
	ruledomain "autoreply-backend/internal/rule/domain"
)

// HandledLabel marks messages the job has already replied to, excluded from
// every coarse search.
const HandledLabel = "auto-replied"

// BuildQuery translates a rule's conditions into a provider search query:
// unread, not already handled, from any of the listed senders, subject
// containing the given phrase. Provider search is a coarse, approximate
// filter; Matches re-checks the fetched message before acting.
func BuildQuery(cond ruledomain.RuleConditions) string {
	parts := []string{"is:unread", "-label:" + HandledLabel}

	if len(cond.From) > 0 {
		parts = append(parts, fmt.Sprintf("from:(%s)", strings.Join(cond.From, " OR ")))
	}
	if cond.Subject != "" {
		parts = append(parts, fmt.Sprintf("subject:(%q)", cond.Subject))
	}

	return strings.Join(parts, " ")
}

// Matches is the fine-grained re-check of a fetched message against the
// rule's exact intent. Provider search tokenizes and partial-matches, so a
// message that passed the coarse filter can still fail here; such a message
// is skipped, never replied to.
func Matches(cond ruledomain.RuleConditions, msg *domain.MessageDetail) bool {
	from := strings.ToLower(msg.From)

	for _, excluded := range cond.Exclude {
		if excluded != "" && strings.Contains(from, strings.ToLower(excluded)) {
			return false
		}
	}

	// From entries are OR-combined: any listed address or domain may match.
	if len(cond.From) > 0 {
		matched := false
		for _, sender := range cond.From {
			if sender != "" && strings.Contains(from, strings.ToLower(sender)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if cond.Subject != "" && !strings.Contains(strings.ToLower(msg.Subject), strings.ToLower(cond.Subject)) {
		return false
	}

	if cond.Body != "" && !strings.Contains(strings.ToLower(msg.Body), strings.ToLower(cond.Body)) {
		return false
	}

	return true
}
