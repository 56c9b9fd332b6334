package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/tempo/internal/core/rule"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// ActionExecutor interprets and executes rule actions. This is the side
// of the engine where I/O happens; condition evaluation and parameter
// decoding stay pure in core/rule.
//
// Mutating actions go through the primary services, so rule effects obey
// the same guards as human edits and publish their own lifecycle events.
type ActionExecutor interface {
	Execute(ctx context.Context, actionType, rawParams string, ev models.Event) error
}

// DefaultActionExecutor implements ActionExecutor against the services.
type DefaultActionExecutor struct {
	taskService  primary.TaskService
	approvalRepo secondary.ApprovalRepository
	notifier     secondary.NotificationSender
}

// NewActionExecutor creates a new DefaultActionExecutor.
func NewActionExecutor(
	taskService primary.TaskService,
	approvalRepo secondary.ApprovalRepository,
	notifier secondary.NotificationSender,
) *DefaultActionExecutor {
	return &DefaultActionExecutor{
		taskService:  taskService,
		approvalRepo: approvalRepo,
		notifier:     notifier,
	}
}

// Execute runs one action against the event's entity.
func (e *DefaultActionExecutor) Execute(ctx context.Context, actionType, rawParams string, ev models.Event) error {
	params, err := rule.DecodeParams(actionType, rawParams, ev)
	if err != nil {
		return err
	}

	switch typed := params.(type) {
	case *rule.AssignUserParams:
		return e.executeAssignUser(ctx, typed, ev)
	case *rule.ChangeStatusParams:
		return e.executeChangeStatus(ctx, typed, ev)
	case *rule.CreateTaskParams:
		return e.executeCreateTask(ctx, typed, ev)
	case *rule.SendNotificationParams:
		return e.executeSendNotification(ctx, typed, ev)
	case *rule.UpdateFieldParams:
		return e.executeUpdateField(ctx, typed, ev)
	default:
		return fmt.Errorf("unknown action params type: %T", params)
	}
}

func (e *DefaultActionExecutor) executeAssignUser(ctx context.Context, p *rule.AssignUserParams, ev models.Event) error {
	if ev.Entity.Kind != models.EntityKindTask {
		return fmt.Errorf("assign_user targets tasks, event entity is %s", ev.Entity.Kind)
	}
	if p.AssigneeID == "" {
		return errors.New("assign_user requires assignee_id")
	}
	return e.taskService.AssignTask(ctx, ev.Entity.ID, p.AssigneeID)
}

func (e *DefaultActionExecutor) executeChangeStatus(ctx context.Context, p *rule.ChangeStatusParams, ev models.Event) error {
	if ev.Entity.Kind != models.EntityKindTask {
		return fmt.Errorf("change_status targets tasks, event entity is %s", ev.Entity.Kind)
	}
	if !models.ValidTaskStatus(p.Status) {
		return fmt.Errorf("unknown task status %q", p.Status)
	}
	// SetStatus re-checks precedence constraints; a blocked transition
	// surfaces as a failed execution, not a silent skip.
	return e.taskService.SetStatus(ctx, ev.Entity.ID, p.Status)
}

func (e *DefaultActionExecutor) executeCreateTask(ctx context.Context, p *rule.CreateTaskParams, ev models.Event) error {
	if p.Title == "" {
		return errors.New("create_task requires title")
	}
	if ev.ProjectID == "" {
		return errors.New("create_task requires an event with a project")
	}
	_, err := e.taskService.CreateTask(ctx, primary.CreateTaskRequest{
		ProjectID:   ev.ProjectID,
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		AssigneeID:  p.AssigneeID,
		DueDate:     p.DueDate,
	})
	return err
}

func (e *DefaultActionExecutor) executeSendNotification(ctx context.Context, p *rule.SendNotificationParams, ev models.Event) error {
	if p.UserID == "" {
		return errors.New("send_notification requires user_id")
	}
	if p.Template == "" {
		return errors.New("send_notification requires template")
	}
	params := make(map[string]string, len(p.Params)+2)
	for k, v := range p.Params {
		params[k] = v
	}
	params["entity"] = ev.Entity.String()
	params["event_type"] = ev.Type
	return e.notifier.Send(ctx, p.UserID, p.Template, params)
}

func (e *DefaultActionExecutor) executeUpdateField(ctx context.Context, p *rule.UpdateFieldParams, ev models.Event) error {
	if !rule.FieldUpdatable(ev.Entity.Kind, p.Field) {
		return fmt.Errorf("field %s is not updatable on %s", p.Field, ev.Entity.Kind)
	}

	switch ev.Entity.Kind {
	case models.EntityKindTask:
		return e.taskService.UpdateField(ctx, ev.Entity.ID, p.Field, p.Value)
	case models.EntityKindTimeEntry, models.EntityKindExpense:
		return e.approvalRepo.UpdateField(ctx, ev.Entity.Kind, ev.Entity.ID, p.Field, p.Value)
	default:
		return fmt.Errorf("update_field does not support %s entities", ev.Entity.Kind)
	}
}

// Ensure DefaultActionExecutor implements the interface
var _ ActionExecutor = (*DefaultActionExecutor)(nil)
