package dbosruntime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrWorkflowNotFound is returned when the status table has no such workflow
var ErrWorkflowNotFound = errors.New("workflow not found in DBOS")

// WorkflowStatusInfo represents the status of a workflow
type WorkflowStatusInfo struct {
	WorkflowUUID string
	Status       string
	Name         string
	CreatedAt    int64
	UpdatedAt    int64
}

// GetWorkflowStatus retrieves the status of a workflow from the DBOS status table
func (r *Runtime) GetWorkflowStatus(ctx context.Context, workflowUUID string) (*WorkflowStatusInfo, error) {
	query := `
		SELECT workflow_uuid, status, name, created_at, updated_at
		FROM dbos.workflow_status
		WHERE workflow_uuid = $1
	`

	var info WorkflowStatusInfo
	err := r.db.QueryRowContext(ctx, query, workflowUUID).Scan(
		&info.WorkflowUUID,
		&info.Status,
		&info.Name,
		&info.CreatedAt,
		&info.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow status: %w", err)
	}

	return &info, nil
}

// CountByStatus returns the number of workflows of this application per status
func (r *Runtime) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM dbos.workflow_status
		WHERE application_id = $1 OR $1 = ''
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query, r.config.AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan workflow count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
