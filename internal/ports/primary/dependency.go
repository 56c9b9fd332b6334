package primary

import "context"

// DependencyService defines the primary port for the precedence graph.
type DependencyService interface {
	// AddDependency inserts a precedence edge after validating the
	// self-edge, duplicate, and acyclicity invariants.
	AddDependency(ctx context.Context, req AddDependencyRequest) error

	// RemoveDependency deletes the edge for the ordered pair.
	RemoveDependency(ctx context.Context, taskID, dependsOnID string) error

	// ListDependencies retrieves the edges where the task is the
	// dependent side.
	ListDependencies(ctx context.Context, taskID string) ([]*Dependency, error)

	// ValidateStatusTransition checks whether the task may move to
	// newStatus given its predecessors. Returns nil when allowed.
	ValidateStatusTransition(ctx context.Context, taskID, newStatus string) error
}

// AddDependencyRequest contains parameters for adding an edge.
type AddDependencyRequest struct {
	TaskID      string
	DependsOnID string
	Type        string // finish_to_start etc.
}

// Dependency represents a precedence edge at the port boundary.
type Dependency struct {
	TaskID      string
	DependsOnID string
	Type        string
	CreatedAt   string
}
