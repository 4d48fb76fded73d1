package domain

// RuleResult is one entry of a run's aggregate report: one per (rule,
// message) pair, or one per rule-level skip/failure. Assembled only for the
// caller of a single run and never persisted.
type RuleResult struct {
	RuleID    string `json:"ruleId"`
	MessageID string `json:"msgId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// RunReport is the payload returned to the triggering caller.
type RunReport struct {
	Success   bool         `json:"success"`
	Processed []RuleResult `json:"processed"`
	Skipped   string       `json:"skipped,omitempty"`
}
