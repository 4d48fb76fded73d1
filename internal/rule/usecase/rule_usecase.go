package usecase

import (
	"errors"
	"time"

	authdomain "autoreply-backend/internal/auth/domain"
	authrepo "autoreply-backend/internal/auth/repository"
	autoreplydomain "autoreply-backend/internal/autoreply/domain"
	autoreplyrepo "autoreply-backend/internal/autoreply/repository"
	"autoreply-backend/internal/rule/domain"
	"autoreply-backend/internal/rule/dto"
	"autoreply-backend/internal/rule/repository"

	"gorm.io/datatypes"
)

var ErrRuleNotFound = errors.New("rule not found")

// ruleUsecase implements RuleUsecase
type ruleUsecase struct {
	ruleRepo repository.RuleRepository
	userRepo authrepo.UserRepository
	logRepo  autoreplyrepo.LogRepository
}

func NewRuleUsecase(ruleRepo repository.RuleRepository, userRepo authrepo.UserRepository, logRepo autoreplyrepo.LogRepository) RuleUsecase {
	return &ruleUsecase{
		ruleRepo: ruleRepo,
		userRepo: userRepo,
		logRepo:  logRepo,
	}
}

func (u *ruleUsecase) CreateRule(userEmail, userName string, req *dto.CreateRuleRequest) (*domain.Rule, error) {
	user, err := u.userRepo.FindByEmail(userEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &authdomain.User{
			Email: userEmail,
			Name:  userName,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	}

	conditions := domain.RuleConditions{Operator: domain.OperatorOr}
	if req.Conditions != nil {
		conditions = *req.Conditions
	} else {
		if req.Sender != "" {
			conditions.From = []string{req.Sender}
		}
		conditions.Subject = req.Subject
	}
	if err := validateConditions(conditions, req.MatchAll); err != nil {
		return nil, err
	}

	format := req.ReplyFormat
	if format == "" {
		format = domain.FormatText
	}
	if format != domain.FormatText && format != domain.FormatHTML {
		return nil, &ValidationError{Msg: "reply_format must be text or html"}
	}

	rule := &domain.Rule{
		UserID:        user.ID,
		Name:          req.Name,
		Conditions:    datatypes.NewJSONType(conditions),
		ReplyTemplate: req.Template,
		ReplyFormat:   format,
		IsActive:      req.IsActive,
		DelayMinutes:  req.DelayMinutes,
	}
	if err := u.ruleRepo.Create(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *ruleUsecase) GetRules(userID string) ([]*domain.Rule, error) {
	return u.ruleRepo.FindByUserID(userID)
}

func (u *ruleUsecase) GetRuleByID(userID, id string) (*domain.Rule, error) {
	rule, err := u.ruleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil || rule.UserID != userID {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

func (u *ruleUsecase) UpdateRule(userID, id string, req *dto.UpdateRuleRequest) (*domain.Rule, error) {
	rule, err := u.GetRuleByID(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Template != nil {
		rule.ReplyTemplate = *req.Template
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.Conditions != nil {
		if err := validateConditions(*req.Conditions, req.MatchAll); err != nil {
			return nil, err
		}
		rule.Conditions = datatypes.NewJSONType(*req.Conditions)
	}
	if req.ReplyFormat != nil {
		if *req.ReplyFormat != domain.FormatText && *req.ReplyFormat != domain.FormatHTML {
			return nil, &ValidationError{Msg: "reply_format must be text or html"}
		}
		rule.ReplyFormat = *req.ReplyFormat
	}
	if req.DelayMinutes != nil {
		rule.DelayMinutes = *req.DelayMinutes
	}

	if err := u.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *ruleUsecase) DeleteRule(userID, id string) error {
	if _, err := u.GetRuleByID(userID, id); err != nil {
		return err
	}
	return u.ruleRepo.Delete(id)
}

func (u *ruleUsecase) ToggleRule(userID, id string) (*domain.Rule, error) {
	rule, err := u.GetRuleByID(userID, id)
	if err != nil {
		return nil, err
	}
	rule.IsActive = !rule.IsActive
	if err := u.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *ruleUsecase) GetLogs(userID string, limit, offset int) ([]*autoreplydomain.ReplyLog, int64, error) {
	ruleIDs, err := u.ruleIDs(userID)
	if err != nil {
		return nil, 0, err
	}
	if len(ruleIDs) == 0 {
		return []*autoreplydomain.ReplyLog{}, 0, nil
	}
	return u.logRepo.FindByRuleIDs(ruleIDs, limit, offset)
}

func (u *ruleUsecase) GetStats(userID string) (*dto.StatsResponse, error) {
	rules, err := u.ruleRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.StatsResponse{TotalRules: int64(len(rules))}
	ruleIDs := make([]string, 0, len(rules))
	for _, rule := range rules {
		ruleIDs = append(ruleIDs, rule.ID)
		if rule.IsActive {
			stats.ActiveRules++
		}
	}
	if len(ruleIDs) == 0 {
		return stats, nil
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	sentToday, err := u.logRepo.CountByStatusSince(ruleIDs, autoreplydomain.StatusSent, midnight)
	if err != nil {
		return nil, err
	}
	stats.RepliesSentToday = sentToday

	totalSent, err := u.logRepo.CountByStatusSince(ruleIDs, autoreplydomain.StatusSent, time.Time{})
	if err != nil {
		return nil, err
	}
	stats.TotalReplies = totalSent

	return stats, nil
}

func (u *ruleUsecase) ruleIDs(userID string) ([]string, error) {
	rules, err := u.ruleRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
	}
	return ids, nil
}

// validateConditions rejects an unscoped rule unless the caller confirmed
// it on purpose via match_all.
func validateConditions(cond domain.RuleConditions, matchAll bool) error {
	if cond.Operator != domain.OperatorAnd && cond.Operator != domain.OperatorOr && cond.Operator != "" {
		return &ValidationError{Msg: "operator must be AND or OR"}
	}
	if cond.Unscoped() && !matchAll {
		return &ValidationError{Msg: "rule has no sender, subject or body condition; set match_all to confirm a catch-all rule"}
	}
	return nil
}
