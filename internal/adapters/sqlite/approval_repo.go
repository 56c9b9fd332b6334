package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/secondary"
)

// ApprovalRepository implements secondary.ApprovalRepository with SQLite.
// Time entries and expenses share the approval schema; Kind routes to the
// right table.
type ApprovalRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewApprovalRepository creates a new SQLite approval repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewApprovalRepository(db *sql.DB, logWriter secondary.LogWriter) *ApprovalRepository {
	return &ApprovalRepository{db: db, logWriter: logWriter}
}

func approvalTable(kind models.EntityKind) (string, string, error) {
	switch kind {
	case models.EntityKindTimeEntry:
		return "time_entries", "ENTRY-", nil
	case models.EntityKindExpense:
		return "expenses", "EXP-", nil
	}
	return "", "", fmt.Errorf("kind %s does not carry approval state", kind)
}

const approvalColumns = `id, project_id, task_id, user_id, quantity, entry_date, description, approval_status, approved_by, approved_at, rejection_reason, created_at, updated_at`

// Create persists a new pending entry.
func (r *ApprovalRepository) Create(ctx context.Context, entry *secondary.ApprovalEntryRecord) error {
	table, _, err := approvalTable(entry.Kind)
	if err != nil {
		return err
	}
	if entry.ApprovalStatus == "" {
		entry.ApprovalStatus = models.ApprovalPending
	}

	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, project_id, task_id, user_id, quantity, entry_date, description, approval_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table),
		entry.ID,
		entry.ProjectID,
		nullString(entry.TaskID),
		entry.UserID,
		entry.Quantity,
		entry.EntryDate,
		nullString(entry.Description),
		entry.ApprovalStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", entry.Kind, err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, string(entry.Kind), entry.ID)
	}

	return nil
}

// GetByID retrieves an entry by kind and ID.
func (r *ApprovalRepository) GetByID(ctx context.Context, kind models.EntityKind, id string) (*secondary.ApprovalEntryRecord, error) {
	table, _, err := approvalTable(kind)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT `+approvalColumns+` FROM %s WHERE id = ?`, table), id)

	record, err := scanApprovalEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	record.Kind = kind
	return record, nil
}

// UpdateApproval writes the approval fields of an entry.
func (r *ApprovalRepository) UpdateApproval(ctx context.Context, kind models.EntityKind, id string, fields secondary.ApprovalFields) error {
	table, _, err := approvalTable(kind)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET approval_status = ?, approved_by = ?, approved_at = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, table),
		fields.Status,
		nullString(fields.ApprovedBy),
		nullTime(fields.ApprovedAt),
		nullString(fields.RejectionReason),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, string(kind), id, "approval_status", "", fields.Status)
	}

	return nil
}

// entryFieldColumns maps allow-listed field names to columns. The
// allow-list itself is enforced by core/rule; this map only prevents SQL
// injection via field names.
var entryFieldColumns = map[string]string{
	"description": "description",
}

// UpdateField performs a generic single-field update.
func (r *ApprovalRepository) UpdateField(ctx context.Context, kind models.EntityKind, id, field, value string) error {
	table, _, err := approvalTable(kind)
	if err != nil {
		return err
	}
	column, ok := entryFieldColumns[field]
	if !ok {
		return fmt.Errorf("field %s is not updatable", field)
	}

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, table, column),
		value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s field: %w", kind, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, string(kind), id, field, "", value)
	}

	return nil
}

// List retrieves entries matching the given filters.
func (r *ApprovalRepository) List(ctx context.Context, kind models.EntityKind, filters secondary.ApprovalFilters) ([]*secondary.ApprovalEntryRecord, error) {
	table, _, err := approvalTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT `+approvalColumns+` FROM %s WHERE 1=1`, table)
	args := []any{}

	if filters.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filters.ProjectID)
	}
	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.Status != "" {
		query += " AND approval_status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var entries []*secondary.ApprovalEntryRecord
	for rows.Next() {
		record, err := scanApprovalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		record.Kind = kind
		entries = append(entries, record)
	}

	return entries, rows.Err()
}

// GetNextID returns the next available ID for the kind.
func (r *ApprovalRepository) GetNextID(ctx context.Context, kind models.EntityKind) (string, error) {
	table, prefix, err := approvalTable(kind)
	if err != nil {
		return "", err
	}

	var maxID int
	prefixLen := len(prefix) + 1
	err = r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", prefixLen, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", kind, err)
	}

	return fmt.Sprintf("%s%03d", prefix, maxID+1), nil
}

func scanApprovalEntry(row rowScanner) (*secondary.ApprovalEntryRecord, error) {
	var (
		taskID          sql.NullString
		description     sql.NullString
		approvedBy      sql.NullString
		approvedAt      sql.NullTime
		rejectionReason sql.NullString
		createdAt       time.Time
		updatedAt       time.Time
	)

	record := &secondary.ApprovalEntryRecord{}
	err := row.Scan(&record.ID, &record.ProjectID, &taskID, &record.UserID,
		&record.Quantity, &record.EntryDate, &description, &record.ApprovalStatus,
		&approvedBy, &approvedAt, &rejectionReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	record.TaskID = taskID.String
	record.Description = description.String
	record.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		record.ApprovedAt = approvedAt.Time.Format(time.RFC3339)
	}
	record.RejectionReason = rejectionReason.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// Ensure ApprovalRepository implements the interface
var _ secondary.ApprovalRepository = (*ApprovalRepository)(nil)
