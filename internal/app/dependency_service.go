package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/tempo/internal/core/dependency"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// DependencyServiceImpl implements the DependencyService interface.
//
// AddDependency serializes per project: cycle validation reads the whole
// project edge set, so two concurrent inserts could each pass validation
// and together close a cycle. The per-project lock closes that window.
type DependencyServiceImpl struct {
	depRepo  secondary.DependencyRepository
	taskRepo secondary.TaskRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDependencyService creates a new DependencyService with injected dependencies.
func NewDependencyService(depRepo secondary.DependencyRepository, taskRepo secondary.TaskRepository) *DependencyServiceImpl {
	return &DependencyServiceImpl{
		depRepo:  depRepo,
		taskRepo: taskRepo,
		locks:    make(map[string]*sync.Mutex),
	}
}

// AddDependency inserts a precedence edge after validating the self-edge,
// duplicate, and acyclicity invariants against the project's edge set.
func (s *DependencyServiceImpl) AddDependency(ctx context.Context, req primary.AddDependencyRequest) error {
	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return err
	}
	dependsOn, err := s.taskRepo.GetByID(ctx, req.DependsOnID)
	if err != nil {
		return err
	}
	if task.ProjectID != dependsOn.ProjectID {
		return fmt.Errorf("tasks %s and %s belong to different projects", req.TaskID, req.DependsOnID)
	}

	lock := s.projectLock(task.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.depRepo.ListByProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project dependencies: %w", err)
	}

	edge := dependency.Edge{TaskID: req.TaskID, DependsOnID: req.DependsOnID, Type: req.Type}
	if err := dependency.ValidateNewEdge(edges(existing), edge).Error(); err != nil {
		return err
	}

	return s.depRepo.Add(ctx, &secondary.DependencyRecord{
		TaskID:      req.TaskID,
		DependsOnID: req.DependsOnID,
		Type:        req.Type,
	})
}

// RemoveDependency deletes the edge for the ordered pair.
func (s *DependencyServiceImpl) RemoveDependency(ctx context.Context, taskID, dependsOnID string) error {
	return s.depRepo.Remove(ctx, taskID, dependsOnID)
}

// ListDependencies retrieves the edges where the task is the dependent side.
func (s *DependencyServiceImpl) ListDependencies(ctx context.Context, taskID string) ([]*primary.Dependency, error) {
	records, err := s.depRepo.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	deps := make([]*primary.Dependency, 0, len(records))
	for _, r := range records {
		deps = append(deps, &primary.Dependency{
			TaskID:      r.TaskID,
			DependsOnID: r.DependsOnID,
			Type:        r.Type,
			CreatedAt:   r.CreatedAt,
		})
	}
	return deps, nil
}

// ValidateStatusTransition checks whether the task may move to newStatus
// given its predecessors. Returns nil when allowed.
func (s *DependencyServiceImpl) ValidateStatusTransition(ctx context.Context, taskID, newStatus string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	preds, err := s.depRepo.ListPredecessors(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load predecessors: %w", err)
	}

	return dependency.CanTransition(task.Status, newStatus, predecessors(preds)).Error()
}

func (s *DependencyServiceImpl) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock
}

func edges(records []*secondary.DependencyRecord) []dependency.Edge {
	es := make([]dependency.Edge, 0, len(records))
	for _, r := range records {
		es = append(es, dependency.Edge{TaskID: r.TaskID, DependsOnID: r.DependsOnID, Type: r.Type})
	}
	return es
}

// Ensure DependencyServiceImpl implements the interface
var _ primary.DependencyService = (*DependencyServiceImpl)(nil)
