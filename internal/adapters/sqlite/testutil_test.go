// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup functions use db.GetSchemaSQL() so tests run
// against the authoritative schema; repository code referencing a missing
// column fails here with "no such column" instead of in production.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tempo/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedProject inserts a test project and returns its ID.
func seedProject(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "PROJ-001"
	}
	if name == "" {
		name = "Test Project"
	}
	_, err := db.Exec("INSERT INTO projects (id, name, status) VALUES (?, ?, 'active')", id, name)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// seedTask inserts a test task and returns its ID.
func seedTask(t *testing.T, db *sql.DB, id, projectID, status string) string {
	t.Helper()
	if id == "" {
		id = "TASK-001"
	}
	if projectID == "" {
		projectID = "PROJ-001"
	}
	if status == "" {
		status = "todo"
	}
	_, err := db.Exec("INSERT INTO tasks (id, project_id, title, status) VALUES (?, ?, 'Test Task', ?)", id, projectID, status)
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return id
}

// seedRule inserts a test rule and returns its ID.
func seedRule(t *testing.T, db *sql.DB, id, triggerType, actionType string) string {
	t.Helper()
	if id == "" {
		id = "RULE-001"
	}
	if triggerType == "" {
		triggerType = "task_created"
	}
	if actionType == "" {
		actionType = "send_notification"
	}
	_, err := db.Exec("INSERT INTO automation_rules (id, name, trigger_type, action_type, is_active) VALUES (?, 'Test Rule', ?, ?, 1)", id, triggerType, actionType)
	if err != nil {
		t.Fatalf("failed to seed rule: %v", err)
	}
	return id
}
