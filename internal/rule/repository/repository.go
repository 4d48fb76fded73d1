package repository

import (
	"time"

	"autoreply-backend/internal/rule/domain"
)

// RuleRepository defines the interface for rule data access. The auto-reply
// job only reads rules and touches last_triggered; everything else belongs
// to the CRUD surface.
type RuleRepository interface {
	Create(rule *domain.Rule) error
	FindByID(id string) (*domain.Rule, error)
	FindByUserID(userID string) ([]*domain.Rule, error)

	// FindActiveWithOwners returns every active rule with its owning user
	// preloaded, for one job run.
	FindActiveWithOwners() ([]*domain.Rule, error)

	Update(rule *domain.Rule) error
	Delete(id string) error
	TouchLastTriggered(id string, at time.Time) error
}
