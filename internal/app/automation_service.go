package app

import (
	"context"
	"fmt"

	"github.com/example/tempo/internal/core/rule"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// AutomationServiceImpl implements the AutomationService interface.
type AutomationServiceImpl struct {
	ruleRepo secondary.RuleRepository
	execRepo secondary.ExecutionRepository
}

// NewAutomationService creates a new AutomationService with injected dependencies.
func NewAutomationService(ruleRepo secondary.RuleRepository, execRepo secondary.ExecutionRepository) *AutomationServiceImpl {
	return &AutomationServiceImpl{
		ruleRepo: ruleRepo,
		execRepo: execRepo,
	}
}

// CreateRule creates a new automation rule.
func (s *AutomationServiceImpl) CreateRule(ctx context.Context, req primary.CreateRuleRequest) (*primary.CreateRuleResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if !models.ValidTriggerType(req.TriggerType) {
		return nil, fmt.Errorf("unknown trigger type %q", req.TriggerType)
	}
	if !models.ValidActionType(req.ActionType) {
		return nil, fmt.Errorf("unknown action type %q", req.ActionType)
	}
	if req.CooldownSeconds < 0 {
		return nil, fmt.Errorf("cooldown must not be negative")
	}
	// Reject malformed condition trees at write time, not evaluation time
	if _, err := rule.ParseConditions(req.ConditionsJSON); err != nil {
		return nil, fmt.Errorf("invalid conditions: %w", err)
	}

	nextID, err := s.ruleRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rule ID: %w", err)
	}

	record := &secondary.RuleRecord{
		ID:              nextID,
		Name:            req.Name,
		TriggerType:     req.TriggerType,
		ConditionsJSON:  req.ConditionsJSON,
		ActionType:      req.ActionType,
		ActionParams:    req.ActionParams,
		IsActive:        true,
		CooldownSeconds: req.CooldownSeconds,
	}

	if err := s.ruleRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	created, err := s.ruleRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created rule: %w", err)
	}

	return &primary.CreateRuleResponse{
		RuleID: created.ID,
		Rule:   recordToRule(created),
	}, nil
}

// UpdateRule updates a rule's definition. Empty fields are left unchanged;
// changes take effect for events published after the write completes.
func (s *AutomationServiceImpl) UpdateRule(ctx context.Context, req primary.UpdateRuleRequest) error {
	existing, err := s.ruleRepo.GetByID(ctx, req.RuleID)
	if err != nil {
		return err
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.ConditionsJSON != "" {
		if _, err := rule.ParseConditions(req.ConditionsJSON); err != nil {
			return fmt.Errorf("invalid conditions: %w", err)
		}
		existing.ConditionsJSON = req.ConditionsJSON
	}
	if req.ActionParams != "" {
		existing.ActionParams = req.ActionParams
	}
	if req.CooldownSeconds != nil {
		if *req.CooldownSeconds < 0 {
			return fmt.Errorf("cooldown must not be negative")
		}
		existing.CooldownSeconds = *req.CooldownSeconds
	}

	return s.ruleRepo.Update(ctx, existing)
}

// DeactivateRule retires a rule without deleting it, preserving the
// execution ledger's referential integrity.
func (s *AutomationServiceImpl) DeactivateRule(ctx context.Context, ruleID string) error {
	return s.ruleRepo.SetActive(ctx, ruleID, false)
}

// ActivateRule re-enables a deactivated rule.
func (s *AutomationServiceImpl) ActivateRule(ctx context.Context, ruleID string) error {
	return s.ruleRepo.SetActive(ctx, ruleID, true)
}

// GetRule retrieves a rule by ID.
func (s *AutomationServiceImpl) GetRule(ctx context.Context, ruleID string) (*primary.Rule, error) {
	record, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	return recordToRule(record), nil
}

// ListRules lists rules with optional filters.
func (s *AutomationServiceImpl) ListRules(ctx context.Context, filters primary.RuleFilters) ([]*primary.Rule, error) {
	records, err := s.ruleRepo.List(ctx, secondary.RuleFilters{
		TriggerType: filters.TriggerType,
		ActiveOnly:  filters.ActiveOnly,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	rules := make([]*primary.Rule, 0, len(records))
	for _, r := range records {
		rules = append(rules, recordToRule(r))
	}
	return rules, nil
}

// ListExecutions retrieves ledger rows for a rule, newest first.
func (s *AutomationServiceImpl) ListExecutions(ctx context.Context, ruleID string, limit int) ([]*primary.Execution, error) {
	if _, err := s.ruleRepo.GetByID(ctx, ruleID); err != nil {
		return nil, err
	}

	records, err := s.execRepo.ListByRule(ctx, ruleID, limit)
	if err != nil {
		return nil, err
	}

	executions := make([]*primary.Execution, 0, len(records))
	for _, r := range records {
		executions = append(executions, &primary.Execution{
			ID:         r.ID,
			RuleID:     r.RuleID,
			Entity:     models.EntityRef{Kind: r.EntityKind, ID: r.EntityID},
			EventID:    r.EventID,
			Outcome:    r.Outcome,
			Error:      r.Error,
			ExecutedAt: r.ExecutedAt,
		})
	}
	return executions, nil
}

func recordToRule(r *secondary.RuleRecord) *primary.Rule {
	return &primary.Rule{
		ID:              r.ID,
		Name:            r.Name,
		TriggerType:     r.TriggerType,
		ConditionsJSON:  r.ConditionsJSON,
		ActionType:      r.ActionType,
		ActionParams:    r.ActionParams,
		IsActive:        r.IsActive,
		CooldownSeconds: r.CooldownSeconds,
		ExecutionCount:  r.ExecutionCount,
		LastExecutedAt:  r.LastExecutedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Ensure AutomationServiceImpl implements the interface
var _ primary.AutomationService = (*AutomationServiceImpl)(nil)
