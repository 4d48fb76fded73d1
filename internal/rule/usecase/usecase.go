package usecase

import (
	autoreplydomain "autoreply-backend/internal/autoreply/domain"
	"autoreply-backend/internal/rule/domain"
	"autoreply-backend/internal/rule/dto"
)

// RuleUsecase is the CRUD surface over rules plus the dashboard data reads.
type RuleUsecase interface {
	// CreateRule provisions the user record by email when absent before
	// writing the rule.
	CreateRule(userEmail, userName string, req *dto.CreateRuleRequest) (*domain.Rule, error)
	GetRules(userID string) ([]*domain.Rule, error)
	GetRuleByID(userID, id string) (*domain.Rule, error)
	UpdateRule(userID, id string, req *dto.UpdateRuleRequest) (*domain.Rule, error)
	DeleteRule(userID, id string) error
	ToggleRule(userID, id string) (*domain.Rule, error)

	GetLogs(userID string, limit, offset int) ([]*autoreplydomain.ReplyLog, int64, error)
	GetStats(userID string) (*dto.StatsResponse, error)
}

// ValidationError is returned to the CRUD caller for a rejected write; no
// partial write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
