// Package wire provides dependency injection for the tempo application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"log"
	"os"
	"sync"
	"time"

	"github.com/example/tempo/internal/adapters/notify"
	"github.com/example/tempo/internal/adapters/sqlite"
	"github.com/example/tempo/internal/app"
	"github.com/example/tempo/internal/config"
	"github.com/example/tempo/internal/db"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

var (
	taskService       primary.TaskService
	dependencyService primary.DependencyService
	approvalService   primary.ApprovalService
	automationService primary.AutomationService
	projectRepo       secondary.ProjectRepository
	eventBus          *app.EventBus
	scanner           *app.DueDateScanner
	cfg               *config.Config
	once              sync.Once
)

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// DependencyService returns the singleton DependencyService instance.
func DependencyService() primary.DependencyService {
	once.Do(initServices)
	return dependencyService
}

// ApprovalService returns the singleton ApprovalService instance.
func ApprovalService() primary.ApprovalService {
	once.Do(initServices)
	return approvalService
}

// AutomationService returns the singleton AutomationService instance.
func AutomationService() primary.AutomationService {
	once.Do(initServices)
	return automationService
}

// ProjectRepository returns the singleton project repository.
func ProjectRepository() secondary.ProjectRepository {
	once.Do(initServices)
	return projectRepo
}

// Scanner returns the singleton due-date scanner. The caller decides when
// to start it; one-shot CLI commands never do.
func Scanner() *app.DueDateScanner {
	once.Do(initServices)
	return scanner
}

// Bus returns the singleton event bus, already started.
func Bus() *app.EventBus {
	once.Do(initServices)
	return eventBus
}

// Config returns the effective configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Shutdown drains the event bus and stops the scanner. Call before exit so
// queued rule evaluations finish. A no-op when nothing was initialized.
func Shutdown() {
	if eventBus == nil {
		return
	}
	scanner.Stop()
	eventBus.Stop()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cfg = loadConfig()

	database, err := openDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports)
	logWriter := sqlite.NewLogWriterAdapter(database)
	taskRepo := sqlite.NewTaskRepository(database, logWriter)
	depRepo := sqlite.NewDependencyRepository(database, logWriter)
	approvalRepo := sqlite.NewApprovalRepository(database, logWriter)
	ruleRepo := sqlite.NewRuleRepository(database, logWriter)
	execRepo := sqlite.NewExecutionRepository(database)
	eventRepo := sqlite.NewEventRepository(database)
	projectRepo = sqlite.NewProjectRepository(database)
	notifier := notify.NewConsoleSender()
	clock := secondary.SystemClock{}

	// Event bus carries every lifecycle event to the rule engine
	eventBus = app.NewEventBus(eventRepo, cfg.WorkerCount, cfg.QueueDepth)

	// Create services (primary ports implementation)
	taskService = app.NewTaskService(taskRepo, depRepo, eventBus, clock)
	dependencyService = app.NewDependencyService(depRepo, taskRepo)
	approvalService = app.NewApprovalService(approvalRepo, eventBus, clock)
	automationService = app.NewAutomationService(ruleRepo, execRepo)

	executor := app.NewActionExecutor(taskService, approvalRepo, notifier)
	engine := app.NewRuleEngine(ruleRepo, execRepo, executor, clock,
		time.Duration(cfg.ActionTimeoutSeconds)*time.Second)
	eventBus.Subscribe(engine)
	eventBus.Start()

	scanner = app.NewDueDateScanner(taskRepo, eventBus, clock, cfg.ScanSchedule, cfg.DueSoonDays)
}

func loadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Default()
	}
	loaded, err := config.LoadConfig(cwd)
	if err != nil {
		return config.Default()
	}
	return loaded
}

func openDB() (*sql.DB, error) {
	if cfg.DBPath != "" {
		return db.GetDBAt(cfg.DBPath)
	}
	return db.GetDB()
}
