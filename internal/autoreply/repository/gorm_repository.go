package repository

import (
	"time"

	"autoreply-backend/internal/autoreply/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormLogRepository implements LogRepository using GORM
type gormLogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &gormLogRepository{db: db}
}

func (r *gormLogRepository) Create(entry *domain.ReplyLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.TriggeredAt.IsZero() {
		entry.TriggeredAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *gormLogRepository) FindByRuleIDs(ruleIDs []string, limit, offset int) ([]*domain.ReplyLog, int64, error) {
	var entries []*domain.ReplyLog
	var total int64

	query := r.db.Model(&domain.ReplyLog{}).Where("rule_id IN ?", ruleIDs)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("triggered_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}

func (r *gormLogRepository) CountByStatusSince(ruleIDs []string, status string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ReplyLog{}).
		Where("rule_id IN ? AND status = ? AND triggered_at >= ?", ruleIDs, status, since).
		Count(&count).Error
	return count, err
}

// gormAnsweredRepository implements AnsweredRepository using GORM
type gormAnsweredRepository struct {
	db *gorm.DB
}

func NewAnsweredRepository(db *gorm.DB) AnsweredRepository {
	return &gormAnsweredRepository{db: db}
}

func (r *gormAnsweredRepository) Exists(ruleID, messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.AnsweredMessage{}).
		Where("rule_id = ? AND message_id = ?", ruleID, messageID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormAnsweredRepository) Mark(ruleID, messageID string) error {
	entry := &domain.AnsweredMessage{
		ID:        uuid.New().String(),
		RuleID:    ruleID,
		MessageID: messageID,
		CreatedAt: time.Now(),
	}
	// Idempotent: a pair marked twice stays a single row.
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// gormJobLockRepository implements JobLockRepository using GORM
type gormJobLockRepository struct {
	db *gorm.DB
}

func NewJobLockRepository(db *gorm.DB) JobLockRepository {
	return &gormJobLockRepository{db: db}
}

func (r *gormJobLockRepository) Acquire(name string, ttl time.Duration) (bool, error) {
	now := time.Now()
	lock := &domain.JobLock{
		Name:      name,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Upsert that only steals the lease once the previous holder expired.
	// RowsAffected is zero when a live lease exists.
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"expires_at": now.Add(ttl),
			"updated_at": now,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lt{Column: clause.Column{Table: "job_locks", Name: "expires_at"}, Value: now},
		}},
	}).Create(lock)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormJobLockRepository) Release(name string) error {
	return r.db.Where("name = ?", name).Delete(&domain.JobLock{}).Error
}
