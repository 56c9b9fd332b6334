package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// DueDateScanner periodically publishes due_date_approaching events for
// unfinished tasks whose due date falls inside the warning window.
//
// Event IDs are deterministic per task and scan day, so a rescan within
// the same day republishes the same event IDs and the execution ledger
// deduplicates them. The next day a fresh event ID fires the rules again.
type DueDateScanner struct {
	taskRepo  secondary.TaskRepository
	publisher primary.EventPublisher
	clock     secondary.Clock

	schedule string
	window   time.Duration

	cron *cron.Cron
}

// NewDueDateScanner creates a scanner with the given cron schedule and
// warning window in days.
func NewDueDateScanner(
	taskRepo secondary.TaskRepository,
	publisher primary.EventPublisher,
	clock secondary.Clock,
	schedule string,
	dueSoonDays int,
) *DueDateScanner {
	if dueSoonDays < 1 {
		dueSoonDays = 1
	}
	return &DueDateScanner{
		taskRepo:  taskRepo,
		publisher: publisher,
		clock:     clock,
		schedule:  schedule,
		window:    time.Duration(dueSoonDays) * 24 * time.Hour,
	}
}

// Start schedules periodic scans. Returns an error if the schedule
// expression does not parse.
func (s *DueDateScanner) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		if err := s.Scan(context.Background()); err != nil {
			log.Printf("due date scanner: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid scan schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running scan to finish.
func (s *DueDateScanner) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Scan runs one pass over the due tasks. Exported so the CLI can trigger
// a one-shot scan.
func (s *DueDateScanner) Scan(ctx context.Context) error {
	now := s.clock.Now()
	cutoff := now.Add(s.window).Format(time.RFC3339)

	tasks, err := s.taskRepo.ListDueBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to scan due tasks: %w", err)
	}

	for _, task := range tasks {
		event := models.Event{
			ID:         scanEventID(task.ID, now),
			Type:       models.TriggerDueDateApproaching,
			Entity:     models.EntityRef{Kind: models.EntityKindTask, ID: task.ID},
			ProjectID:  task.ProjectID,
			Snapshot:   taskSnapshot(task),
			OccurredAt: now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Same-day rescans republish known event IDs; the event log's
			// primary key rejects those and the scan moves on.
			log.Printf("due date scanner: task %s: %v", task.ID, err)
		}
	}
	return nil
}

func scanEventID(taskID string, now time.Time) string {
	return fmt.Sprintf("due-%s-%s", taskID, now.Format("2006-01-02"))
}
