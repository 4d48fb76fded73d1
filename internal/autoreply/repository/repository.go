package repository

import (
	"time"

	"autoreply-backend/internal/autoreply/domain"
)

// LogRepository is the append-only log sink. Writes carry no uniqueness
// constraint and are safe to repeat without coordination.
type LogRepository interface {
	Create(entry *domain.ReplyLog) error
	FindByRuleIDs(ruleIDs []string, limit, offset int) ([]*domain.ReplyLog, int64, error)
	CountByStatusSince(ruleIDs []string, status string, since time.Time) (int64, error)
}

// AnsweredRepository tracks (rule, message) pairs that have already been
// replied to, independent of provider label state.
type AnsweredRepository interface {
	Exists(ruleID, messageID string) (bool, error)
	Mark(ruleID, messageID string) error
}

// JobLockRepository hands out the short-lived exclusive run lease.
type JobLockRepository interface {
	// Acquire returns false when another run currently holds the lease.
	Acquire(name string, ttl time.Duration) (bool, error)
	Release(name string) error
}
