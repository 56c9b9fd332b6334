package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/tempo/internal/ctxutil"
	"github.com/example/tempo/internal/core/rule"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// RuleEngine is the bus subscriber that evaluates automation rules against
// lifecycle events. For each event it walks the active rules for the
// trigger in ascending rule-id order; rules are independent, so one rule's
// failure never blocks the rest.
//
// Idempotency: the execution ledger is keyed (rule, entity, event). An
// event redelivered to the engine finds its ledger rows and does nothing.
type RuleEngine struct {
	ruleRepo      secondary.RuleRepository
	execRepo      secondary.ExecutionRepository
	executor      ActionExecutor
	clock         secondary.Clock
	actionTimeout time.Duration
}

// NewRuleEngine creates a new RuleEngine with injected dependencies.
func NewRuleEngine(
	ruleRepo secondary.RuleRepository,
	execRepo secondary.ExecutionRepository,
	executor ActionExecutor,
	clock secondary.Clock,
	actionTimeout time.Duration,
) *RuleEngine {
	if actionTimeout <= 0 {
		actionTimeout = 10 * time.Second
	}
	return &RuleEngine{
		ruleRepo:      ruleRepo,
		execRepo:      execRepo,
		executor:      executor,
		clock:         clock,
		actionTimeout: actionTimeout,
	}
}

// Name identifies the subscriber in logs.
func (e *RuleEngine) Name() string { return "rule-engine" }

// OnEvent processes one event against every matching rule.
func (e *RuleEngine) OnEvent(ctx context.Context, ev models.Event) error {
	rules, err := e.ruleRepo.ListActiveByTrigger(ctx, ev.Type)
	if err != nil {
		return fmt.Errorf("failed to load rules for %s: %w", ev.Type, err)
	}

	for _, r := range rules {
		if err := e.applyRule(ctx, r, ev); err != nil {
			log.Printf("rule engine: rule %s on event %s: %v", r.ID, ev.ID, err)
		}
	}
	return nil
}

// applyRule evaluates and executes one rule for one event. The returned
// error covers engine-level problems (ledger unreachable); action failures
// are recorded in the ledger and not returned.
func (e *RuleEngine) applyRule(ctx context.Context, r *secondary.RuleRecord, ev models.Event) error {
	key := secondary.ExecutionKey{
		RuleID:     r.ID,
		EntityKind: ev.Entity.Kind,
		EntityID:   ev.Entity.ID,
		EventID:    ev.ID,
	}
	seen, err := e.execRepo.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check ledger: %w", err)
	}
	if seen {
		return nil
	}

	cond, err := rule.ParseConditions(r.ConditionsJSON)
	if err != nil {
		// A rule whose stored conditions no longer parse is broken data;
		// record the failure so it shows up in the execution history.
		return e.record(ctx, key, models.OutcomeFailed, err, false)
	}
	if !rule.Evaluate(cond, ev.Snapshot, e.clock.Now()) {
		return nil
	}

	if reason, cooling := e.inCooldown(r); cooling {
		return e.record(ctx, key, models.OutcomeSkipped, errors.New(reason), false)
	}

	if err := e.runAction(ctx, r, ev); err != nil {
		return e.record(ctx, key, models.OutcomeFailed, err, false)
	}
	return e.record(ctx, key, models.OutcomeSuccess, nil, true)
}

// runAction executes the rule's action under the configured timeout, with
// the rule as the acting identity so downstream audit rows and events
// attribute the mutation to automation.
func (e *RuleEngine) runAction(ctx context.Context, r *secondary.RuleRecord, ev models.Event) error {
	actionCtx, cancel := context.WithTimeout(ctxutil.WithActorID(ctx, r.ID), e.actionTimeout)
	defer cancel()

	err := e.executor.Execute(actionCtx, r.ActionType, r.ActionParams, ev)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: action %s exceeded %s", models.ErrActionTimeout, r.ActionType, e.actionTimeout)
	}
	return fmt.Errorf("%w: %v", models.ErrRuleActionFailed, err)
}

// inCooldown reports whether the rule's cooldown window is still open.
func (e *RuleEngine) inCooldown(r *secondary.RuleRecord) (string, bool) {
	if r.CooldownSeconds <= 0 || r.LastExecutedAt == "" {
		return "", false
	}
	last, err := time.Parse(time.RFC3339, r.LastExecutedAt)
	if err != nil {
		return "", false
	}
	until := last.Add(time.Duration(r.CooldownSeconds) * time.Second)
	if e.clock.Now().Before(until) {
		return fmt.Sprintf("cooldown active until %s", until.Format(time.RFC3339)), true
	}
	return "", false
}

// record appends the outcome to the ledger. Counters bump only on success,
// in the same transaction as the ledger row.
func (e *RuleEngine) record(ctx context.Context, key secondary.ExecutionKey, outcome string, cause error, bumpRule bool) error {
	rec := &secondary.ExecutionRecord{
		ID:         uuid.NewString(),
		RuleID:     key.RuleID,
		EntityKind: key.EntityKind,
		EntityID:   key.EntityID,
		EventID:    key.EventID,
		Outcome:    outcome,
		ExecutedAt: e.clock.Now().Format(time.RFC3339),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := e.execRepo.Append(ctx, rec, bumpRule); err != nil {
		return fmt.Errorf("failed to append %s execution: %w", outcome, err)
	}
	if cause != nil {
		return cause
	}
	return nil
}

// Ensure RuleEngine implements the interface
var _ primary.EventSubscriber = (*RuleEngine)(nil)
