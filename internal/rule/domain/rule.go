package domain

import (
	"time"

	authdomain "autoreply-backend/internal/auth/domain"

	"gorm.io/datatypes"
)

// ConditionOperator governs how multiple `from` entries combine within the
// from-clause of the provider query. A message has a single sender, so the
// entries are OR-joined in the coarse search regardless; the field is kept
// for forward compatibility with per-predicate combination.
type ConditionOperator string

const (
	OperatorAnd ConditionOperator = "AND"
	OperatorOr  ConditionOperator = "OR"
)

// Reply formats.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// RuleConditions is the match condition set of a rule. From entries are
// OR-combined among themselves; from vs subject is implicitly AND-combined.
type RuleConditions struct {
	Operator ConditionOperator `json:"operator"`
	From     []string          `json:"from,omitempty"`
	Subject  string            `json:"subject,omitempty"`
	Body     string            `json:"body,omitempty"`
	Exclude  []string          `json:"exclude,omitempty"`
}

// Unscoped reports whether the condition set has no discriminator at all,
// which would match every unread message in the inbox.
func (c RuleConditions) Unscoped() bool {
	return len(c.From) == 0 && c.Subject == "" && c.Body == ""
}

// Rule is a user-defined trigger-condition plus reply-template pair. The
// auto-reply job reads rules and only ever writes last_triggered.
type Rule struct {
	ID            string                                 `json:"id" gorm:"primaryKey"`
	UserID        string                                 `json:"user_id" gorm:"index;not null"`
	Name          string                                 `json:"name" gorm:"not null"`
	Conditions    datatypes.JSONType[RuleConditions]     `json:"conditions" gorm:"type:jsonb"`
	ReplyTemplate string                                 `json:"reply_template" gorm:"type:text"`
	ReplyFormat   string                                 `json:"reply_format" gorm:"default:text"`
	IsActive      bool                                   `json:"is_active" gorm:"default:true;index"`

	// DelayMinutes is an intended reply throttle. Stored and editable, but
	// not yet applied by the job.
	DelayMinutes int `json:"delay_minutes" gorm:"default:0"`

	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	User *authdomain.User `json:"-" gorm:"foreignKey:UserID"`
}

func (Rule) TableName() string {
	return "rules"
}
