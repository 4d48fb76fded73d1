package domain

import "time"

// Log statuses. One ReplyLog row is written per processed message attempt,
// never for rule invocations that matched nothing.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ReplyLog is the append-only outcome record for one message attempt.
type ReplyLog struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	RuleID      string    `json:"rule_id" gorm:"index;not null"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject"`
	Status      string    `json:"status" gorm:"not null"`
	TriggeredAt time.Time `json:"triggered_at"`
}

func (ReplyLog) TableName() string {
	return "logs"
}

// AnsweredMessage records that a (rule, message) pair has already been
// replied to. Checked before every send, independent of provider label
// state, so a failed label update cannot cause a duplicate reply on the
// next run.
type AnsweredMessage struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	RuleID    string    `json:"rule_id" gorm:"index:idx_rule_message;uniqueIndex:idx_rule_message_unique;not null"`
	MessageID string    `json:"message_id" gorm:"index:idx_rule_message;uniqueIndex:idx_rule_message_unique;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (AnsweredMessage) TableName() string {
	return "answered_messages"
}

// JobLock is a short-lived exclusive lease keyed by a fixed job name.
// Overlapping scheduler triggers degrade to a no-op instead of sending
// duplicate replies.
type JobLock struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JobLock) TableName() string {
	return "job_locks"
}
