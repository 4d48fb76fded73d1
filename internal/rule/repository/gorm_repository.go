package repository

import (
	"errors"
	"time"

	"autoreply-backend/internal/rule/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRuleRepository implements RuleRepository using GORM
type gormRuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &gormRuleRepository{db: db}
}

func (r *gormRuleRepository) Create(rule *domain.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return r.db.Create(rule).Error
}

func (r *gormRuleRepository) FindByID(id string) (*domain.Rule, error) {
	var rule domain.Rule
	err := r.db.Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *gormRuleRepository) FindByUserID(userID string) ([]*domain.Rule, error) {
	var rules []*domain.Rule
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rules).Error
	return rules, err
}

func (r *gormRuleRepository) FindActiveWithOwners() ([]*domain.Rule, error) {
	var rules []*domain.Rule
	err := r.db.Preload("User").Where("is_active = ?", true).Order("created_at ASC").Find(&rules).Error
	return rules, err
}

func (r *gormRuleRepository) Update(rule *domain.Rule) error {
	rule.UpdatedAt = time.Now()
	return r.db.Save(rule).Error
}

func (r *gormRuleRepository) Delete(id string) error {
	return r.db.Delete(&domain.Rule{}, "id = ?", id).Error
}

func (r *gormRuleRepository) TouchLastTriggered(id string, at time.Time) error {
	return r.db.Model(&domain.Rule{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_triggered": at,
			"updated_at":     time.Now(),
		}).Error
}
