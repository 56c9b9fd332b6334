// Package models contains domain types for tempo entities.
// SQL persistence lives in internal/adapters/sqlite/*.go.
package models

import "fmt"

// EntityKind identifies the kind of entity an event or execution refers to.
type EntityKind string

const (
	EntityKindTask      EntityKind = "task"
	EntityKindProject   EntityKind = "project"
	EntityKindTimeEntry EntityKind = "time_entry"
	EntityKindExpense   EntityKind = "expense"
)

// Valid reports whether the kind is one of the supported entity kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityKindTask, EntityKindProject, EntityKindTimeEntry, EntityKindExpense:
		return true
	}
	return false
}

// EntityRef is a tagged reference to an entity. Components exchange refs
// plus field snapshots, never embedded entities.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}
