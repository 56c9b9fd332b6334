package rule

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/tempo/internal/models"
)

// Typed parameter structs, one per action kind. Stored as JSON on the rule
// row; decoded here after $event substitution.

// AssignUserParams configures the assign_user action.
type AssignUserParams struct {
	AssigneeID string `json:"assignee_id"`
}

// ChangeStatusParams configures the change_status action.
type ChangeStatusParams struct {
	Status string `json:"status"`
}

// CreateTaskParams configures the create_task action. The task is created
// under the triggering entity's project.
type CreateTaskParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// SendNotificationParams configures the send_notification action.
type SendNotificationParams struct {
	UserID   string            `json:"user_id"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

// UpdateFieldParams configures the update_field action.
type UpdateFieldParams struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DecodeParams decodes stored action parameters for the given action type,
// substituting $event references against the triggering event first.
// Returns one of the *Params structs above.
func DecodeParams(actionType, raw string, ev models.Event) (any, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	var generic map[string]any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("failed to parse action params: %w", err)
	}
	substituted, err := json.Marshal(substituteMap(generic, ev))
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode action params: %w", err)
	}

	decode := func(dst any) (any, error) {
		if err := json.Unmarshal(substituted, dst); err != nil {
			return nil, fmt.Errorf("invalid params for %s: %w", actionType, err)
		}
		return dst, nil
	}

	switch actionType {
	case models.ActionAssignUser:
		return decode(&AssignUserParams{})
	case models.ActionChangeStatus:
		return decode(&ChangeStatusParams{})
	case models.ActionCreateTask:
		return decode(&CreateTaskParams{})
	case models.ActionSendNotification:
		return decode(&SendNotificationParams{})
	case models.ActionUpdateField:
		return decode(&UpdateFieldParams{})
	}
	return nil, fmt.Errorf("unknown action type %q", actionType)
}

func substituteMap(m map[string]any, ev models.Event) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = Substitute(val, ev)
		case map[string]any:
			out[k] = substituteMap(val, ev)
		default:
			out[k] = v
		}
	}
	return out
}

// Substitute replaces a "$event.<field>" reference with the corresponding
// event attribute or snapshot field. Non-reference strings pass through
// unchanged; an unknown field resolves to the empty string.
func Substitute(s string, ev models.Event) string {
	if !strings.HasPrefix(s, "$event.") {
		return s
	}
	field := strings.TrimPrefix(s, "$event.")
	switch field {
	case "id", "event_id":
		return ev.ID
	case "type", "event_type":
		return ev.Type
	case "entity_id":
		return ev.Entity.ID
	case "entity_kind":
		return string(ev.Entity.Kind)
	case "project_id":
		return ev.ProjectID
	case "actor_id", "creator_id":
		return ev.ActorID
	}
	if v, ok := ev.Snapshot[field]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// updatableFields is the allow-list of fields the update_field action may
// set, per entity kind.
var updatableFields = map[models.EntityKind]map[string]bool{
	models.EntityKindTask: {
		"title":       true,
		"description": true,
		"priority":    true,
		"due_date":    true,
		"progress":    true,
	},
	models.EntityKindTimeEntry: {
		"description": true,
	},
	models.EntityKindExpense: {
		"description": true,
	},
}

// FieldUpdatable reports whether the update_field action may set the given
// field on the given entity kind.
func FieldUpdatable(kind models.EntityKind, field string) bool {
	return updatableFields[kind][field]
}
