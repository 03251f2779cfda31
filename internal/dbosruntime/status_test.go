package dbosruntime

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRuntime(t *testing.T) (*Runtime, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := Config{AppName: "caption-pipeline"}
	cfg.WithDefaults()
	return &Runtime{db: db, config: cfg}, mock
}

func TestGetWorkflowStatus(t *testing.T) {
	r, mock := newMockRuntime(t)

	mock.ExpectQuery("FROM dbos.workflow_status").
		WithArgs("narrate-c1-1").
		WillReturnRows(sqlmock.NewRows([]string{"workflow_uuid", "status", "name", "created_at", "updated_at"}).
			AddRow("narrate-c1-1", "SUCCESS", "executeWorkflowDBOS", int64(1), int64(2)))

	info, err := r.GetWorkflowStatus(context.Background(), "narrate-c1-1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", info.Status)
	assert.Equal(t, int64(2), info.UpdatedAt)
}

func TestGetWorkflowStatusNotFound(t *testing.T) {
	r, mock := newMockRuntime(t)

	mock.ExpectQuery("FROM dbos.workflow_status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetWorkflowStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestCountByStatus(t *testing.T) {
	r, mock := newMockRuntime(t)

	mock.ExpectQuery("GROUP BY status").
		WithArgs("caption-pipeline").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("SUCCESS", 3).
			AddRow("PENDING", 1))

	counts, err := r.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SUCCESS": 3, "PENDING": 1}, counts)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.WithDefaults()
	assert.Equal(t, "default", cfg.QueueName)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "caption-pipeline", cfg.AppName)
}
