package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// fixedClock implements secondary.Clock with a settable instant.
type fixedClock struct {
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// capturingPublisher implements primary.EventPublisher and records events.
type capturingPublisher struct {
	mu         sync.Mutex
	events     []models.Event
	publishErr error
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{}
}

func (p *capturingPublisher) Publish(ctx context.Context, event models.Event) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Event(nil), p.events...)
}

// mockTaskRepository implements secondary.TaskRepository for testing.
type mockTaskRepository struct {
	tasks               map[string]*secondary.TaskRecord
	nextID              int
	projectExistsResult bool
	createErr           error
	updateStatusErr     error
	updateFieldErr      error
	listDueErr          error
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{
		tasks:               make(map[string]*secondary.TaskRecord),
		projectExistsResult: true,
	}
}

func (m *mockTaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	if task, ok := m.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
}

func (m *mockTaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	var result []*secondary.TaskRecord
	for _, t := range m.tasks {
		if filters.ProjectID != "" && t.ProjectID != filters.ProjectID {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.AssigneeID != "" && t.AssigneeID != filters.AssigneeID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTaskRepository) UpdateStatus(ctx context.Context, id, status string, setCompleted bool) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	task.Status = status
	if setCompleted {
		task.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		task.Progress = 100
	}
	return nil
}

func (m *mockTaskRepository) Assign(ctx context.Context, id, assigneeID string) error {
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	task.AssigneeID = assigneeID
	return nil
}

func (m *mockTaskRepository) UpdateField(ctx context.Context, id, field, value string) error {
	if m.updateFieldErr != nil {
		return m.updateFieldErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}
	switch field {
	case "title":
		task.Title = value
	case "description":
		task.Description = value
	case "due_date":
		task.DueDate = value
	}
	return nil
}

func (m *mockTaskRepository) ListDueBefore(ctx context.Context, cutoff string) ([]*secondary.TaskRecord, error) {
	if m.listDueErr != nil {
		return nil, m.listDueErr
	}
	var result []*secondary.TaskRecord
	for _, t := range m.tasks {
		if t.Status == models.TaskStatusDone || t.DueDate == "" {
			continue
		}
		if t.DueDate <= cutoff {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTaskRepository) GetNextID(ctx context.Context) (string, error) {
	m.nextID++
	return fmt.Sprintf("TASK-%03d", m.nextID), nil
}

func (m *mockTaskRepository) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	return m.projectExistsResult, nil
}

// mockDependencyRepository implements secondary.DependencyRepository for testing.
type mockDependencyRepository struct {
	edges    []*secondary.DependencyRecord
	statuses map[string]string // prerequisite task -> status
}

func newMockDependencyRepository() *mockDependencyRepository {
	return &mockDependencyRepository{statuses: make(map[string]string)}
}

func (m *mockDependencyRepository) Add(ctx context.Context, edge *secondary.DependencyRecord) error {
	m.edges = append(m.edges, edge)
	return nil
}

func (m *mockDependencyRepository) Remove(ctx context.Context, taskID, dependsOnID string) error {
	for i, e := range m.edges {
		if e.TaskID == taskID && e.DependsOnID == dependsOnID {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("dependency %s->%s: %w", taskID, dependsOnID, models.ErrNotFound)
}

func (m *mockDependencyRepository) ListByProject(ctx context.Context, projectID string) ([]*secondary.DependencyRecord, error) {
	return append([]*secondary.DependencyRecord(nil), m.edges...), nil
}

func (m *mockDependencyRepository) ListForTask(ctx context.Context, taskID string) ([]*secondary.DependencyRecord, error) {
	var result []*secondary.DependencyRecord
	for _, e := range m.edges {
		if e.TaskID == taskID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockDependencyRepository) ListPredecessors(ctx context.Context, taskID string) ([]*secondary.PredecessorRecord, error) {
	var result []*secondary.PredecessorRecord
	for _, e := range m.edges {
		if e.TaskID == taskID {
			result = append(result, &secondary.PredecessorRecord{
				TaskID: e.DependsOnID,
				Type:   e.Type,
				Status: m.statuses[e.DependsOnID],
			})
		}
	}
	return result, nil
}

// mockApprovalRepository implements secondary.ApprovalRepository for testing.
type mockApprovalRepository struct {
	entries map[string]*secondary.ApprovalEntryRecord
	nextID  map[models.EntityKind]int
}

func newMockApprovalRepository() *mockApprovalRepository {
	return &mockApprovalRepository{
		entries: make(map[string]*secondary.ApprovalEntryRecord),
		nextID:  make(map[models.EntityKind]int),
	}
}

func (m *mockApprovalRepository) Create(ctx context.Context, entry *secondary.ApprovalEntryRecord) error {
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *mockApprovalRepository) GetByID(ctx context.Context, kind models.EntityKind, id string) (*secondary.ApprovalEntryRecord, error) {
	if entry, ok := m.entries[id]; ok && entry.Kind == kind {
		copied := *entry
		return &copied, nil
	}
	return nil, fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
}

func (m *mockApprovalRepository) UpdateApproval(ctx context.Context, kind models.EntityKind, id string, fields secondary.ApprovalFields) error {
	entry, ok := m.entries[id]
	if !ok || entry.Kind != kind {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}
	entry.ApprovalStatus = fields.Status
	entry.ApprovedBy = fields.ApprovedBy
	entry.ApprovedAt = fields.ApprovedAt
	entry.RejectionReason = fields.RejectionReason
	return nil
}

func (m *mockApprovalRepository) UpdateField(ctx context.Context, kind models.EntityKind, id, field, value string) error {
	entry, ok := m.entries[id]
	if !ok || entry.Kind != kind {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}
	if field == "description" {
		entry.Description = value
	}
	return nil
}

func (m *mockApprovalRepository) List(ctx context.Context, kind models.EntityKind, filters secondary.ApprovalFilters) ([]*secondary.ApprovalEntryRecord, error) {
	var result []*secondary.ApprovalEntryRecord
	for _, e := range m.entries {
		if e.Kind != kind {
			continue
		}
		if filters.UserID != "" && e.UserID != filters.UserID {
			continue
		}
		if filters.Status != "" && e.ApprovalStatus != filters.Status {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *mockApprovalRepository) GetNextID(ctx context.Context, kind models.EntityKind) (string, error) {
	m.nextID[kind]++
	prefix := "ENTRY-"
	if kind == models.EntityKindExpense {
		prefix = "EXP-"
	}
	return fmt.Sprintf("%s%03d", prefix, m.nextID[kind]), nil
}

// mockRuleRepository implements secondary.RuleRepository for testing.
type mockRuleRepository struct {
	rules  map[string]*secondary.RuleRecord
	nextID int
}

func newMockRuleRepository() *mockRuleRepository {
	return &mockRuleRepository{rules: make(map[string]*secondary.RuleRecord)}
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *secondary.RuleRecord) error {
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *mockRuleRepository) GetByID(ctx context.Context, id string) (*secondary.RuleRecord, error) {
	if rule, ok := m.rules[id]; ok {
		copied := *rule
		return &copied, nil
	}
	return nil, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
}

func (m *mockRuleRepository) Update(ctx context.Context, rule *secondary.RuleRecord) error {
	existing, ok := m.rules[rule.ID]
	if !ok {
		return fmt.Errorf("rule %s: %w", rule.ID, models.ErrNotFound)
	}
	existing.Name = rule.Name
	existing.ConditionsJSON = rule.ConditionsJSON
	existing.ActionParams = rule.ActionParams
	existing.CooldownSeconds = rule.CooldownSeconds
	return nil
}

func (m *mockRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	rule, ok := m.rules[id]
	if !ok {
		return fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	rule.IsActive = active
	return nil
}

func (m *mockRuleRepository) ListActiveByTrigger(ctx context.Context, triggerType string) ([]*secondary.RuleRecord, error) {
	var ids []string
	for id, r := range m.rules {
		if r.IsActive && r.TriggerType == triggerType {
			ids = append(ids, id)
		}
	}
	// ascending rule-id order, like the SQL adapter
	sort.Strings(ids)
	result := make([]*secondary.RuleRecord, 0, len(ids))
	for _, id := range ids {
		copied := *m.rules[id]
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockRuleRepository) List(ctx context.Context, filters secondary.RuleFilters) ([]*secondary.RuleRecord, error) {
	var result []*secondary.RuleRecord
	for _, r := range m.rules {
		if filters.TriggerType != "" && r.TriggerType != filters.TriggerType {
			continue
		}
		if filters.ActiveOnly && !r.IsActive {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockRuleRepository) GetNextID(ctx context.Context) (string, error) {
	m.nextID++
	return fmt.Sprintf("RULE-%03d", m.nextID), nil
}

// mockExecutionRepository implements secondary.ExecutionRepository for
// testing. It mirrors the SQL adapter's contract: Append enforces key
// uniqueness and bumps the rule counters atomically.
type mockExecutionRepository struct {
	records   []*secondary.ExecutionRecord
	ruleRepo  *mockRuleRepository
	appendErr error
}

func newMockExecutionRepository(ruleRepo *mockRuleRepository) *mockExecutionRepository {
	return &mockExecutionRepository{ruleRepo: ruleRepo}
}

func (m *mockExecutionRepository) key(r *secondary.ExecutionRecord) secondary.ExecutionKey {
	return secondary.ExecutionKey{
		RuleID:     r.RuleID,
		EntityKind: r.EntityKind,
		EntityID:   r.EntityID,
		EventID:    r.EventID,
	}
}

func (m *mockExecutionRepository) Exists(ctx context.Context, key secondary.ExecutionKey) (bool, error) {
	for _, r := range m.records {
		if m.key(r) == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockExecutionRepository) Append(ctx context.Context, record *secondary.ExecutionRecord, bumpRule bool) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, r := range m.records {
		if m.key(r) == m.key(record) {
			return fmt.Errorf("duplicate execution key %v", m.key(record))
		}
	}
	copied := *record
	m.records = append(m.records, &copied)
	if bumpRule && m.ruleRepo != nil {
		if rule, ok := m.ruleRepo.rules[record.RuleID]; ok {
			rule.ExecutionCount++
			rule.LastExecutedAt = record.ExecutedAt
		}
	}
	return nil
}

func (m *mockExecutionRepository) ListByRule(ctx context.Context, ruleID string, limit int) ([]*secondary.ExecutionRecord, error) {
	var result []*secondary.ExecutionRecord
	for _, r := range m.records {
		if r.RuleID == ruleID {
			result = append(result, r)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockExecutionRepository) ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*secondary.ExecutionRecord, error) {
	var result []*secondary.ExecutionRecord
	for _, r := range m.records {
		if r.EntityKind == kind && r.EntityID == entityID {
			result = append(result, r)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockEventRepository implements secondary.EventRepository for testing.
type mockEventRepository struct {
	events    []*secondary.EventRecord
	appendErr error
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{}
}

func (m *mockEventRepository) Append(ctx context.Context, event *secondary.EventRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, e := range m.events {
		if e.ID == event.ID {
			return fmt.Errorf("duplicate event %s", event.ID)
		}
	}
	copied := *event
	m.events = append(m.events, &copied)
	return nil
}

func (m *mockEventRepository) ListByEntity(ctx context.Context, kind models.EntityKind, entityID string, limit int) ([]*secondary.EventRecord, error) {
	var result []*secondary.EventRecord
	for _, e := range m.events {
		if e.EntityKind == kind && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockNotificationSender implements secondary.NotificationSender for testing.
type mockNotificationSender struct {
	mu      sync.Mutex
	sent    []sentNotification
	sendErr error
}

type sentNotification struct {
	UserID   string
	Template string
	Params   map[string]string
}

func newMockNotificationSender() *mockNotificationSender {
	return &mockNotificationSender{}
}

func (m *mockNotificationSender) Send(ctx context.Context, userID, templateKind string, params map[string]string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentNotification{UserID: userID, Template: templateKind, Params: params})
	return nil
}

// Interface assertions
var (
	_ secondary.TaskRepository       = (*mockTaskRepository)(nil)
	_ secondary.DependencyRepository = (*mockDependencyRepository)(nil)
	_ secondary.ApprovalRepository   = (*mockApprovalRepository)(nil)
	_ secondary.RuleRepository       = (*mockRuleRepository)(nil)
	_ secondary.ExecutionRepository  = (*mockExecutionRepository)(nil)
	_ secondary.EventRepository      = (*mockEventRepository)(nil)
	_ secondary.NotificationSender   = (*mockNotificationSender)(nil)
	_ secondary.Clock                = (*fixedClock)(nil)
)
