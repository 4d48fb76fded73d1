package dto

import (
	ruledomain "autoreply-backend/internal/rule/domain"
)

// CreateRuleRequest is the CRUD surface's create payload. The flat
// sender/subject fields cover the simple dashboard form; Conditions takes
// precedence when the full condition set is supplied.
type CreateRuleRequest struct {
	Name     string `json:"name" binding:"required"`
	Sender   string `json:"sender"`
	Subject  string `json:"subject"`
	Template string `json:"template" binding:"required"`
	IsActive bool   `json:"isActive"`

	Conditions   *ruledomain.RuleConditions `json:"conditions,omitempty"`
	ReplyFormat  string                     `json:"reply_format,omitempty"`
	DelayMinutes int                        `json:"delay_minutes,omitempty"`

	// MatchAll confirms a rule with no discriminator on purpose. Unscoped
	// rules answer every unread message, so that has to be an explicit
	// choice rather than a silent default.
	MatchAll bool `json:"match_all,omitempty"`
}

type UpdateRuleRequest struct {
	Name         *string                    `json:"name,omitempty"`
	Template     *string                    `json:"template,omitempty"`
	IsActive     *bool                      `json:"isActive,omitempty"`
	Conditions   *ruledomain.RuleConditions `json:"conditions,omitempty"`
	ReplyFormat  *string                    `json:"reply_format,omitempty"`
	DelayMinutes *int                       `json:"delay_minutes,omitempty"`
	MatchAll     bool                       `json:"match_all,omitempty"`
}

type StatsResponse struct {
	TotalRules       int64 `json:"total_rules"`
	ActiveRules      int64 `json:"active_rules"`
	RepliesSentToday int64 `json:"replies_sent_today"`
	TotalReplies     int64 `json:"total_replies"`
}
