package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoreply-backend/internal/autoreply/domain"
	autoreplyrepo "autoreply-backend/internal/autoreply/repository"
	ruledomain "autoreply-backend/internal/rule/domain"
	rulerepo "autoreply-backend/internal/rule/repository"
	"autoreply-backend/pkg/config"
	"autoreply-backend/pkg/gmail"

	"golang.org/x/time/rate"
)

// jobName keys the run lease; one deployment runs at most one pass at a time.
const jobName = "auto-reply"

// Runner is the job orchestrator. Rules are processed sequentially, and
// messages within a rule sequentially: at-most-one-reply-per-message is
// easier to reason about without concurrent label races, and provider rate
// limits make parallel fan-out counterproductive. A shared token bucket
// gates every provider call instead.
type Runner struct {
	ruleRepo     rulerepo.RuleRepository
	logRepo      autoreplyrepo.LogRepository
	answeredRepo autoreplyrepo.AnsweredRepository
	lockRepo     autoreplyrepo.JobLockRepository
	gateway      MailboxGateway

	maxPerRule int
	rateLimit  float64
	leaseTTL   time.Duration
}

func NewRunner(
	ruleRepo rulerepo.RuleRepository,
	logRepo autoreplyrepo.LogRepository,
	answeredRepo autoreplyrepo.AnsweredRepository,
	lockRepo autoreplyrepo.JobLockRepository,
	gateway MailboxGateway,
	cfg *config.Config,
) *Runner {
	return &Runner{
		ruleRepo:     ruleRepo,
		logRepo:      logRepo,
		answeredRepo: answeredRepo,
		lockRepo:     lockRepo,
		gateway:      gateway,
		maxPerRule:   cfg.MaxMessagesPerRule,
		rateLimit:    cfg.GmailRateLimit,
		leaseTTL:     cfg.RunLeaseTTL,
	}
}

// Run executes one pass over all active rules and returns the aggregate
// report. One rule's failure never aborts the batch; per-message failures
// never abort their rule's remaining messages, except for provider
// throttling which stops that rule for the run.
func (r *Runner) Run(ctx context.Context) (*domain.RunReport, error) {
	acquired, err := r.lockRepo.Acquire(jobName, r.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire run lease: %w", err)
	}
	if !acquired {
		log.Printf("[AutoReply] Run already active, skipping")
		return &domain.RunReport{Success: true, Processed: []domain.RuleResult{}, Skipped: "run already active"}, nil
	}
	defer func() {
		if err := r.lockRepo.Release(jobName); err != nil {
			log.Printf("[AutoReply] Error releasing run lease: %v", err)
		}
	}()

	rules, err := r.ruleRepo.FindActiveWithOwners()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch active rules: %w", err)
	}

	log.Printf("[AutoReply] Starting run over %d active rules", len(rules))

	limiter := rate.NewLimiter(rate.Limit(r.rateLimit), 1)
	// Handled-marker label id per user, resolved once per run.
	labelCache := make(map[string]string)

	results := make([]domain.RuleResult, 0)
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		results = append(results, r.processRule(ctx, rule, limiter, labelCache)...)
	}

	log.Printf("[AutoReply] Run finished with %d result entries", len(results))
	return &domain.RunReport{Success: true, Processed: results}, nil
}

func (r *Runner) processRule(ctx context.Context, rule *ruledomain.Rule, limiter *rate.Limiter, labelCache map[string]string) []domain.RuleResult {
	user := rule.User
	if user == nil || user.GmailRefreshToken == "" {
		// Absent credential makes the rule unprocessable, not failed.
		return []domain.RuleResult{{RuleID: rule.ID, Status: domain.StatusSkipped, Error: "no refresh token"}}
	}

	cred := domain.Credential{
		UserID:       user.ID,
		AccessToken:  user.GmailAccessToken,
		RefreshToken: user.GmailRefreshToken,
	}

	cond := rule.Conditions.Data()
	query := BuildQuery(cond)

	if err := limiter.Wait(ctx); err != nil {
		return []domain.RuleResult{{RuleID: rule.ID, Status: domain.StatusFailed, Error: err.Error()}}
	}
	refs, err := r.gateway.Search(ctx, cred, query, int64(r.maxPerRule))
	if err != nil {
		log.Printf("[AutoReply] Error searching for rule %s: %v", rule.ID, err)
		return []domain.RuleResult{{RuleID: rule.ID, Status: domain.StatusFailed, Error: err.Error()}}
	}

	results := make([]domain.RuleResult, 0, len(refs))
	for _, ref := range refs {
		result, abortRule := r.processMessage(ctx, rule, cond, cred, ref, limiter, labelCache)
		results = append(results, result)
		if abortRule {
			log.Printf("[AutoReply] Aborting remaining messages for rule %s", rule.ID)
			break
		}
	}
	return results
}

// processMessage drives one message through fetch, re-check, render, send,
// log and label update. The returned flag requests aborting the rule's
// remaining messages (provider throttling).
func (r *Runner) processMessage(ctx context.Context, rule *ruledomain.Rule, cond ruledomain.RuleConditions, cred domain.Credential, ref domain.MessageRef, limiter *rate.Limiter, labelCache map[string]string) (domain.RuleResult, bool) {
	answered, err := r.answeredRepo.Exists(rule.ID, ref.ID)
	if err != nil {
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusFailed, Error: err.Error()}, false
	}
	if answered {
		// Replied on an earlier run; the unread label just never came off.
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusSkipped, Error: "already replied"}, false
	}

	if err := limiter.Wait(ctx); err != nil {
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusFailed, Error: err.Error()}, false
	}
	detail, err := r.gateway.FetchDetail(ctx, cred, ref.ID)
	if err != nil {
		if gmail.IsNotFoundError(err) {
			// Message vanished between search and fetch: concurrently handled.
			return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusSkipped, Error: "message no longer exists"}, false
		}
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusFailed, Error: err.Error()}, gmail.IsRateLimitError(err)
	}

	if !Matches(cond, detail) {
		r.writeLog(rule.ID, detail, domain.StatusSkipped)
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusSkipped, Error: "failed condition re-check"}, false
	}

	name, email := ParseSender(detail.From)
	body := Render(rule.ReplyTemplate, TemplateVars{
		SenderName:  name,
		SenderEmail: email,
		Subject:     detail.Subject,
	})
	raw := BuildReply(detail.From, detail.Subject, body, rule.ReplyFormat)

	if err := limiter.Wait(ctx); err != nil {
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusFailed, Error: err.Error()}, false
	}
	if _, err := r.gateway.SendReply(ctx, cred, raw, detail.ThreadID); err != nil {
		log.Printf("[AutoReply] Error sending reply for rule %s message %s: %v", rule.ID, ref.ID, err)
		r.writeLog(rule.ID, detail, domain.StatusFailed)
		return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusFailed, Error: err.Error()}, gmail.IsRateLimitError(err)
	}

	// The reply is out. Record it before anything else can fail so the
	// attempt is never silently lost, and mark the pair answered so a
	// failed label update cannot cause a re-send next run.
	r.writeLog(rule.ID, detail, domain.StatusSent)
	if err := r.answeredRepo.Mark(rule.ID, ref.ID); err != nil {
		log.Printf("[AutoReply] Error marking message %s answered for rule %s: %v", ref.ID, rule.ID, err)
	}
	if err := r.ruleRepo.TouchLastTriggered(rule.ID, time.Now()); err != nil {
		log.Printf("[AutoReply] Error updating last_triggered for rule %s: %v", rule.ID, err)
	}

	if err := r.updateLabels(ctx, cred, ref.ID, limiter, labelCache); err != nil {
		return domain.RuleResult{
			RuleID:    rule.ID,
			MessageID: ref.ID,
			Status:    domain.StatusFailed,
			Error:     fmt.Sprintf("reply sent but label update failed: %v", err),
		}, gmail.IsRateLimitError(err)
	}

	return domain.RuleResult{RuleID: rule.ID, MessageID: ref.ID, Status: domain.StatusSent}, false
}

// updateLabels removes the unread marker and adds the handled marker so the
// message cannot rematch on the next run.
func (r *Runner) updateLabels(ctx context.Context, cred domain.Credential, messageID string, limiter *rate.Limiter, labelCache map[string]string) error {
	var add []string
	labelID, ok := labelCache[cred.UserID]
	if !ok {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		labelID, err = r.gateway.EnsureLabel(ctx, cred, HandledLabel)
		if err != nil {
			// Removing UNREAD alone still stops the reprocessing loop.
			log.Printf("[AutoReply] Error ensuring handled label for user %s: %v", cred.UserID, err)
			labelID = ""
		}
		labelCache[cred.UserID] = labelID
	}
	if labelID != "" {
		add = []string{labelID}
	}

	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	return r.gateway.ModifyLabels(ctx, cred, messageID, add, []string{"UNREAD"})
}

func (r *Runner) writeLog(ruleID string, detail *domain.MessageDetail, status string) {
	entry := &domain.ReplyLog{
		RuleID:      ruleID,
		Recipient:   detail.From,
		Subject:     detail.Subject,
		Status:      status,
		TriggeredAt: time.Now(),
	}
	if err := r.logRepo.Create(entry); err != nil {
		log.Printf("[AutoReply] Error writing log entry for rule %s: %v", ruleID, err)
	}
}
