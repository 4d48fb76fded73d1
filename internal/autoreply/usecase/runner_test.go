package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "autoreply-backend/internal/auth/domain"
	"autoreply-backend/internal/autoreply/domain"
	ruledomain "autoreply-backend/internal/rule/domain"
	"autoreply-backend/pkg/config"
	"autoreply-backend/pkg/gmail"

	"gorm.io/datatypes"
)

// --- fakes ---

type fakeRuleRepo struct {
	rules   []*ruledomain.Rule
	findErr error
	touched []string
}

func (r *fakeRuleRepo) Create(*ruledomain.Rule) error                   { return nil }
func (r *fakeRuleRepo) FindByID(string) (*ruledomain.Rule, error)       { return nil, nil }
func (r *fakeRuleRepo) FindByUserID(string) ([]*ruledomain.Rule, error) { return nil, nil }
func (r *fakeRuleRepo) Update(*ruledomain.Rule) error                   { return nil }
func (r *fakeRuleRepo) Delete(string) error                             { return nil }

func (r *fakeRuleRepo) FindActiveWithOwners() ([]*ruledomain.Rule, error) {
	return r.rules, r.findErr
}

func (r *fakeRuleRepo) TouchLastTriggered(id string, _ time.Time) error {
	r.touched = append(r.touched, id)
	return nil
}

type fakeLogRepo struct {
	entries []*domain.ReplyLog
}

func (r *fakeLogRepo) Create(entry *domain.ReplyLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) FindByRuleIDs([]string, int, int) ([]*domain.ReplyLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *fakeLogRepo) CountByStatusSince([]string, string, time.Time) (int64, error) {
	return 0, nil
}

type fakeAnsweredRepo struct {
	pairs map[string]bool
}

func newFakeAnsweredRepo() *fakeAnsweredRepo {
	return &fakeAnsweredRepo{pairs: make(map[string]bool)}
}

func (r *fakeAnsweredRepo) Exists(ruleID, messageID string) (bool, error) {
	return r.pairs[ruleID+"/"+messageID], nil
}

func (r *fakeAnsweredRepo) Mark(ruleID, messageID string) error {
	r.pairs[ruleID+"/"+messageID] = true
	return nil
}

type fakeLockRepo struct {
	held     bool
	acquires int
	releases int
}

func (r *fakeLockRepo) Acquire(string, time.Duration) (bool, error) {
	r.acquires++
	return !r.held, nil
}

func (r *fakeLockRepo) Release(string) error {
	r.releases++
	return nil
}

type fakeGateway struct {
	searchFunc func(cred domain.Credential, query string, max int64) ([]domain.MessageRef, error)
	fetchFunc  func(id string) (*domain.MessageDetail, error)
	sendFunc   func(raw []byte, threadID string) (string, error)
	modifyFunc func(id string, add, remove []string) error

	searchCalls   int
	fetchCalls    int
	sendCalls     int
	modifyCalls   int
	ensureCalls   int
	lastQuery     string
	lastSearchMax int64
	sentThreads   []string
	sentRaw       [][]byte
}

func (g *fakeGateway) Search(_ context.Context, cred domain.Credential, query string, max int64) ([]domain.MessageRef, error) {
	g.searchCalls++
	g.lastQuery = query
	g.lastSearchMax = max
	if g.searchFunc != nil {
		return g.searchFunc(cred, query, max)
	}
	return nil, nil
}

func (g *fakeGateway) FetchDetail(_ context.Context, _ domain.Credential, id string) (*domain.MessageDetail, error) {
	g.fetchCalls++
	if g.fetchFunc != nil {
		return g.fetchFunc(id)
	}
	return nil, &gmail.NotFoundError{Err: errors.New("no fixture")}
}

func (g *fakeGateway) SendReply(_ context.Context, _ domain.Credential, raw []byte, threadID string) (string, error) {
	g.sendCalls++
	g.sentRaw = append(g.sentRaw, raw)
	g.sentThreads = append(g.sentThreads, threadID)
	if g.sendFunc != nil {
		return g.sendFunc(raw, threadID)
	}
	return "sent-1", nil
}

func (g *fakeGateway) ModifyLabels(_ context.Context, _ domain.Credential, id string, add, remove []string) error {
	g.modifyCalls++
	if g.modifyFunc != nil {
		return g.modifyFunc(id, add, remove)
	}
	return nil
}

func (g *fakeGateway) EnsureLabel(context.Context, domain.Credential, string) (string, error) {
	g.ensureCalls++
	return "Label_42", nil
}

// --- helpers ---

func testRule(id string, cond ruledomain.RuleConditions, refreshToken string) *ruledomain.Rule {
	return &ruledomain.Rule{
		ID:            id,
		UserID:        "user-" + id,
		Name:          "rule " + id,
		Conditions:    datatypes.NewJSONType(cond),
		ReplyTemplate: "Hi {{sender_name}}, thanks about {{subject}}.",
		ReplyFormat:   ruledomain.FormatText,
		IsActive:      true,
		User: &authdomain.User{
			ID:                "user-" + id,
			Email:             id + "@example.com",
			GmailRefreshToken: refreshToken,
		},
	}
}

func newTestRunner(rules *fakeRuleRepo, logs *fakeLogRepo, answered *fakeAnsweredRepo, locks *fakeLockRepo, gw *fakeGateway) *Runner {
	cfg := &config.Config{
		MaxMessagesPerRule: 5,
		GmailRateLimit:     10000,
		RunLeaseTTL:        time.Minute,
	}
	return NewRunner(rules, logs, answered, locks, gw, cfg)
}

func invoiceMessage() *domain.MessageDetail {
	return &domain.MessageDetail{
		ID:       "m1",
		ThreadID: "t1",
		From:     "Alice <alice@co.com>",
		Subject:  "Invoice",
		Body:     "please pay",
	}
}

// --- tests ---

func TestRun_NoCredentialSkipsRule(t *testing.T) {
	gw := &fakeGateway{}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{From: []string{"alice@co.com"}}, ""),
	}}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Processed) != 1 {
		t.Fatalf("want exactly one result entry, got %d", len(report.Processed))
	}
	res := report.Processed[0]
	if res.RuleID != "r1" || res.Status != domain.StatusSkipped {
		t.Errorf("unexpected result: %+v", res)
	}
	if gw.searchCalls+gw.fetchCalls+gw.sendCalls+gw.modifyCalls != 0 {
		t.Error("rule without credential must make zero provider calls")
	}
}

func TestRun_InactiveRuleNeverSearched(t *testing.T) {
	gw := &fakeGateway{}
	inactive := testRule("r1", ruledomain.RuleConditions{From: []string{"alice@co.com"}}, "rt")
	inactive.IsActive = false
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{inactive}}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Processed) != 0 {
		t.Errorf("inactive rule produced results: %+v", report.Processed)
	}
	if gw.searchCalls != 0 {
		t.Error("inactive rule must never issue a search")
	}
}

func TestRun_MatchingMessageReplied(t *testing.T) {
	// Scenario A: one unread matching message, one send, one label update,
	// one log entry with status sent.
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) { return invoiceMessage(), nil },
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{From: []string{"alice@co.com"}, Subject: "Invoice"}, "rt"),
	}}
	logs := &fakeLogRepo{}
	answered := newFakeAnsweredRepo()

	report, err := newTestRunner(rules, logs, answered, &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gw.sendCalls != 1 {
		t.Fatalf("want 1 send call, got %d", gw.sendCalls)
	}
	if gw.modifyCalls != 1 {
		t.Fatalf("want 1 label update, got %d", gw.modifyCalls)
	}
	if gw.sentThreads[0] != "t1" {
		t.Errorf("reply must carry the original threadId, got %q", gw.sentThreads[0])
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != domain.StatusSent {
		t.Fatalf("want one sent log entry, got %+v", logs.entries)
	}
	if logs.entries[0].Recipient != "Alice <alice@co.com>" {
		t.Errorf("log recipient = %q", logs.entries[0].Recipient)
	}
	if !answered.pairs["r1/m1"] {
		t.Error("answered pair not recorded")
	}
	if len(rules.touched) != 1 || rules.touched[0] != "r1" {
		t.Errorf("last_triggered not touched: %v", rules.touched)
	}
	if len(report.Processed) != 1 || report.Processed[0].Status != domain.StatusSent {
		t.Errorf("unexpected report: %+v", report.Processed)
	}
}

func TestRun_FineCheckFailureSkips(t *testing.T) {
	// Scenario B: coarse filter passed, exact substring check fails.
	msg := invoiceMessage()
	msg.Subject = "Invoicing questions"
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) { return msg, nil },
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{From: []string{"alice@co.com"}, Subject: "Invoice for March"}, "rt"),
	}}
	logs := &fakeLogRepo{}

	report, err := newTestRunner(rules, logs, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gw.sendCalls != 0 {
		t.Fatal("message failing the re-check must never be replied to")
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != domain.StatusSkipped {
		t.Fatalf("want one skipped log entry, got %+v", logs.entries)
	}
	if report.Processed[0].Status != domain.StatusSkipped {
		t.Errorf("unexpected result: %+v", report.Processed[0])
	}
}

func TestRun_LabelFailureAfterSend(t *testing.T) {
	// Scenario C: the reply went out, the label update failed. The result
	// reports a failure, the log still records the send, and the answered
	// pair protects the next run.
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc:  func(string) (*domain.MessageDetail, error) { return invoiceMessage(), nil },
		modifyFunc: func(string, []string, []string) error { return errors.New("label boom") },
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}
	logs := &fakeLogRepo{}
	answered := newFakeAnsweredRepo()

	report, err := newTestRunner(rules, logs, answered, &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	res := report.Processed[0]
	if res.Status != domain.StatusFailed || res.Error == "" {
		t.Errorf("label failure must surface as a failed result, got %+v", res)
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != domain.StatusSent {
		t.Fatalf("send attempt must be logged as sent, got %+v", logs.entries)
	}
	if !answered.pairs["r1/m1"] {
		t.Error("answered pair must be recorded even when the label update fails")
	}
}

func TestRun_RuleFailureDoesNotAbortBatch(t *testing.T) {
	gw := &fakeGateway{
		searchFunc: func(cred domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			if cred.UserID == "user-r1" {
				return nil, errors.New("search boom")
			}
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) { return invoiceMessage(), nil },
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
		testRule("r2", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Processed) != 2 {
		t.Fatalf("want results for both rules, got %+v", report.Processed)
	}
	if report.Processed[0].RuleID != "r1" || report.Processed[0].Status != domain.StatusFailed {
		t.Errorf("rule r1: %+v", report.Processed[0])
	}
	if report.Processed[1].RuleID != "r2" || report.Processed[1].Status != domain.StatusSent {
		t.Errorf("rule r2 must still be processed: %+v", report.Processed[1])
	}
}

func TestRun_RateLimitAbortsRemainingMessages(t *testing.T) {
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}, {ID: "m2", ThreadID: "t2"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) { return invoiceMessage(), nil },
		sendFunc: func([]byte, string) (string, error) {
			return "", &gmail.RateLimitError{Err: errors.New("429")}
		},
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gw.fetchCalls != 1 {
		t.Errorf("throttling must abort the rule's remaining messages, fetched %d", gw.fetchCalls)
	}
	if len(report.Processed) != 1 || report.Processed[0].Status != domain.StatusFailed {
		t.Errorf("unexpected report: %+v", report.Processed)
	}
}

func TestRun_VanishedMessageIsBenign(t *testing.T) {
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) {
			return nil, &gmail.NotFoundError{Err: errors.New("404")}
		},
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Processed[0].Status != domain.StatusSkipped {
		t.Errorf("vanished message must skip, got %+v", report.Processed[0])
	}
	if gw.sendCalls != 0 {
		t.Error("vanished message must not be replied to")
	}
}

func TestRun_AlreadyAnsweredPairNotResent(t *testing.T) {
	gw := &fakeGateway{
		searchFunc: func(_ domain.Credential, _ string, _ int64) ([]domain.MessageRef, error) {
			return []domain.MessageRef{{ID: "m1", ThreadID: "t1"}}, nil
		},
		fetchFunc: func(string) (*domain.MessageDetail, error) { return invoiceMessage(), nil },
	}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}
	answered := newFakeAnsweredRepo()
	answered.pairs["r1/m1"] = true

	report, err := newTestRunner(rules, &fakeLogRepo{}, answered, &fakeLockRepo{}, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gw.fetchCalls != 0 || gw.sendCalls != 0 {
		t.Error("answered pair must short-circuit before any further provider call")
	}
	if report.Processed[0].Status != domain.StatusSkipped {
		t.Errorf("unexpected result: %+v", report.Processed[0])
	}
}

func TestRun_HeldLeaseDegradesToNoOp(t *testing.T) {
	gw := &fakeGateway{}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}
	locks := &fakeLockRepo{held: true}

	report, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), locks, gw).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Skipped == "" {
		t.Error("overlapping run must report itself skipped")
	}
	if len(report.Processed) != 0 || gw.searchCalls != 0 {
		t.Error("overlapping run must not process anything")
	}
	if locks.releases != 0 {
		t.Error("a lease that was never acquired must not be released")
	}
}

func TestRun_LeaseReleasedAfterRun(t *testing.T) {
	locks := &fakeLockRepo{}
	rules := &fakeRuleRepo{}

	if _, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), locks, &fakeGateway{}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if locks.acquires != 1 || locks.releases != 1 {
		t.Errorf("lease acquire/release = %d/%d, want 1/1", locks.acquires, locks.releases)
	}
}

func TestRun_SearchUsesPerRuleCap(t *testing.T) {
	gw := &fakeGateway{}
	rules := &fakeRuleRepo{rules: []*ruledomain.Rule{
		testRule("r1", ruledomain.RuleConditions{Subject: "Invoice"}, "rt"),
	}}

	if _, err := newTestRunner(rules, &fakeLogRepo{}, newFakeAnsweredRepo(), &fakeLockRepo{}, gw).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if gw.lastSearchMax != 5 {
		t.Errorf("search cap = %d, want 5", gw.lastSearchMax)
	}
	if gw.lastQuery != `is:unread -label:auto-replied subject:("Invoice")` {
		t.Errorf("unexpected query %q", gw.lastQuery)
	}
}
