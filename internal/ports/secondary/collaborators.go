package secondary

import (
	"context"
	"time"
)

// NotificationSender defines the secondary port for the notification
// collaborator. Delivery mechanics (email, chat) live behind it.
type NotificationSender interface {
	// Send delivers a templated notification to a user.
	Send(ctx context.Context, userID, templateKind string, params map[string]string) error
}

// Clock defines the secondary port for current time, injected so approval
// timestamps, cooldowns, and timeouts are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}
