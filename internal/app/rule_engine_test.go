package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// mockActionExecutor implements ActionExecutor for testing.
type mockActionExecutor struct {
	calls      []string // rule action types in execution order
	failOn     map[string]error
	honorCtx   bool
	blockUntil time.Duration
}

func newMockActionExecutor() *mockActionExecutor {
	return &mockActionExecutor{failOn: make(map[string]error)}
}

func (m *mockActionExecutor) Execute(ctx context.Context, actionType, rawParams string, ev models.Event) error {
	m.calls = append(m.calls, actionType)
	if m.honorCtx {
		select {
		case <-time.After(m.blockUntil):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err, ok := m.failOn[actionType]; ok {
		return err
	}
	return nil
}

func newTestRuleEngine(timeout time.Duration) (*RuleEngine, *mockRuleRepository, *mockExecutionRepository, *mockActionExecutor, *fixedClock) {
	ruleRepo := newMockRuleRepository()
	execRepo := newMockExecutionRepository(ruleRepo)
	executor := newMockActionExecutor()
	clock := newFixedClock()
	engine := NewRuleEngine(ruleRepo, execRepo, executor, clock, timeout)
	return engine, ruleRepo, execRepo, executor, clock
}

func seedEngineRule(ruleRepo *mockRuleRepository, id, trigger, action, conditions string) {
	ruleRepo.rules[id] = &secondary.RuleRecord{
		ID:             id,
		Name:           "Rule " + id,
		TriggerType:    trigger,
		ConditionsJSON: conditions,
		ActionType:     action,
		IsActive:       true,
	}
}

func taskEvent(id, eventType string, snapshot map[string]any) models.Event {
	if snapshot == nil {
		snapshot = map[string]any{}
	}
	return models.Event{
		ID:        id,
		Type:      eventType,
		Entity:    models.EntityRef{Kind: models.EntityKindTask, ID: "TASK-001"},
		ProjectID: "PROJ-001",
		Snapshot:  snapshot,
	}
}

func TestRuleEngine_SuccessRecordsLedgerAndBumpsCounters(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "")

	err := engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil))
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	if len(executor.calls) != 1 {
		t.Fatalf("expected 1 action execution, got %d", len(executor.calls))
	}
	if len(execRepo.records) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(execRepo.records))
	}
	rec := execRepo.records[0]
	if rec.Outcome != models.OutcomeSuccess {
		t.Errorf("expected success outcome, got %s", rec.Outcome)
	}
	if rec.EventID != "evt-1" || rec.RuleID != "RULE-001" {
		t.Errorf("unexpected ledger key: %+v", rec)
	}

	rule := ruleRepo.rules["RULE-001"]
	if rule.ExecutionCount != 1 {
		t.Errorf("expected execution count 1, got %d", rule.ExecutionCount)
	}
	if rule.LastExecutedAt == "" {
		t.Error("expected last_executed_at set")
	}
}

func TestRuleEngine_RedeliveryIsIdempotent(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "")
	ev := taskEvent("evt-1", models.TriggerTaskCreated, nil)

	for i := 0; i < 3; i++ {
		if err := engine.OnEvent(context.Background(), ev); err != nil {
			t.Fatalf("OnEvent failed: %v", err)
		}
	}

	if len(executor.calls) != 1 {
		t.Errorf("expected action executed once, got %d", len(executor.calls))
	}
	if len(execRepo.records) != 1 {
		t.Errorf("expected 1 ledger row, got %d", len(execRepo.records))
	}
	if ruleRepo.rules["RULE-001"].ExecutionCount != 1 {
		t.Errorf("expected execution count 1, got %d", ruleRepo.rules["RULE-001"].ExecutionCount)
	}
}

func TestRuleEngine_DistinctEventsExecuteSeparately(t *testing.T) {
	engine, ruleRepo, execRepo, _, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "")

	_ = engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil))
	_ = engine.OnEvent(context.Background(), taskEvent("evt-2", models.TriggerTaskCreated, nil))

	if len(execRepo.records) != 2 {
		t.Errorf("expected 2 ledger rows, got %d", len(execRepo.records))
	}
	if ruleRepo.rules["RULE-001"].ExecutionCount != 2 {
		t.Errorf("expected execution count 2, got %d", ruleRepo.rules["RULE-001"].ExecutionCount)
	}
}

func TestRuleEngine_ConditionMismatchLeavesNoTrace(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification,
		`{"field":"priority","op":"gte","value":4}`)

	err := engine.OnEvent(context.Background(),
		taskEvent("evt-1", models.TriggerTaskCreated, map[string]any{"priority": 2}))
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	if len(executor.calls) != 0 {
		t.Error("expected no action for non-matching conditions")
	}
	if len(execRepo.records) != 0 {
		t.Error("expected no ledger row for non-matching conditions")
	}
}

func TestRuleEngine_ConditionMatchExecutes(t *testing.T) {
	engine, ruleRepo, _, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification,
		`{"field":"priority","op":"gte","value":4}`)

	_ = engine.OnEvent(context.Background(),
		taskEvent("evt-1", models.TriggerTaskCreated, map[string]any{"priority": 5}))

	if len(executor.calls) != 1 {
		t.Errorf("expected 1 action execution, got %d", len(executor.calls))
	}
}

func TestRuleEngine_ActionFailureRecordedNoBump(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionAssignUser, "")
	executor.failOn[models.ActionAssignUser] = errors.New("assignee not found")

	if err := engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil)); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	if len(execRepo.records) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(execRepo.records))
	}
	rec := execRepo.records[0]
	if rec.Outcome != models.OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", rec.Outcome)
	}
	if rec.Error == "" {
		t.Error("expected error message recorded")
	}
	if ruleRepo.rules["RULE-001"].ExecutionCount != 0 {
		t.Errorf("expected no counter bump on failure, got %d", ruleRepo.rules["RULE-001"].ExecutionCount)
	}
}

func TestRuleEngine_OneRuleFailureDoesNotBlockOthers(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionAssignUser, "")
	seedEngineRule(ruleRepo, "RULE-002", models.TriggerTaskCreated, models.ActionSendNotification, "")
	executor.failOn[models.ActionAssignUser] = errors.New("boom")

	if err := engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil)); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	// Both rules ran, in ascending rule-id order.
	if len(executor.calls) != 2 {
		t.Fatalf("expected both rules to run, got %d calls", len(executor.calls))
	}
	if executor.calls[0] != models.ActionAssignUser || executor.calls[1] != models.ActionSendNotification {
		t.Errorf("expected id-ordered execution, got %v", executor.calls)
	}
	if len(execRepo.records) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(execRepo.records))
	}
	outcomes := map[string]string{}
	for _, r := range execRepo.records {
		outcomes[r.RuleID] = r.Outcome
	}
	if outcomes["RULE-001"] != models.OutcomeFailed || outcomes["RULE-002"] != models.OutcomeSuccess {
		t.Errorf("unexpected outcomes: %v", outcomes)
	}
}

func TestRuleEngine_Timeout(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(20 * time.Millisecond)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionCreateTask, "")
	executor.honorCtx = true
	executor.blockUntil = time.Second

	if err := engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil)); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	if len(execRepo.records) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(execRepo.records))
	}
	rec := execRepo.records[0]
	if rec.Outcome != models.OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", rec.Outcome)
	}
	if rec.Error == "" {
		t.Error("expected timeout message recorded")
	}
	if ruleRepo.rules["RULE-001"].ExecutionCount != 0 {
		t.Error("expected no counter bump on timeout")
	}
}

func TestRuleEngine_Cooldown(t *testing.T) {
	engine, ruleRepo, execRepo, executor, clock := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "")
	ruleRepo.rules["RULE-001"].CooldownSeconds = 300

	_ = engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil))

	// Second event inside the window is skipped.
	clock.advance(time.Minute)
	_ = engine.OnEvent(context.Background(), taskEvent("evt-2", models.TriggerTaskCreated, nil))

	if len(executor.calls) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(executor.calls))
	}
	if len(execRepo.records) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(execRepo.records))
	}
	if execRepo.records[1].Outcome != models.OutcomeSkipped {
		t.Errorf("expected skipped outcome, got %s", execRepo.records[1].Outcome)
	}
	if ruleRepo.rules["RULE-001"].ExecutionCount != 1 {
		t.Errorf("expected execution count 1, got %d", ruleRepo.rules["RULE-001"].ExecutionCount)
	}

	// Past the window the rule fires again.
	clock.advance(5 * time.Minute)
	_ = engine.OnEvent(context.Background(), taskEvent("evt-3", models.TriggerTaskCreated, nil))
	if len(executor.calls) != 2 {
		t.Errorf("expected 2 executions after cooldown, got %d", len(executor.calls))
	}
}

func TestRuleEngine_InactiveRulesIgnored(t *testing.T) {
	engine, ruleRepo, _, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "")
	ruleRepo.rules["RULE-001"].IsActive = false

	_ = engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil))

	if len(executor.calls) != 0 {
		t.Error("expected inactive rule not to run")
	}
}

func TestRuleEngine_BrokenConditionsRecordedAsFailed(t *testing.T) {
	engine, ruleRepo, execRepo, executor, _ := newTestRuleEngine(0)
	seedEngineRule(ruleRepo, "RULE-001", models.TriggerTaskCreated, models.ActionSendNotification, "{not json")

	_ = engine.OnEvent(context.Background(), taskEvent("evt-1", models.TriggerTaskCreated, nil))

	if len(executor.calls) != 0 {
		t.Error("expected no execution for unparseable conditions")
	}
	if len(execRepo.records) != 1 || execRepo.records[0].Outcome != models.OutcomeFailed {
		t.Fatalf("expected failed ledger row, got %v", execRepo.records)
	}
}
