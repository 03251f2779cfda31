package dbosruntime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// jobPriority orders queued runs; lower runs first. Translations back the
// web form while narration waits on speech synthesis.
var jobPriority = map[string]uint{
	pipeline.JobTranslate: 1,
	pipeline.JobCaption:   2,
	pipeline.JobNarrate:   3,
}

// Runtime manages the DBOS runtime lifecycle
type Runtime struct {
	dbosContext dbos.DBOSContext
	queue       *dbos.WorkflowQueue
	config      Config
	db          *sql.DB
	logger      *zap.SugaredLogger
}

// NewRuntime creates a new DBOS runtime instance
// Returns error if the system database URL is not set
func NewRuntime(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Runtime, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DBOS_SYSTEM_DATABASE_URL is required")
	}

	// Apply defaults
	cfg.WithDefaults()

	// Initialize DBOS context
	dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
		DatabaseURL:        cfg.DatabaseURL,
		AppName:            cfg.AppName,
		ApplicationVersion: cfg.ApplicationVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DBOS context: %w", err)
	}

	queue := dbos.NewWorkflowQueue(dbosCtx, cfg.QueueName, queueOptions(cfg)...)

	// Create database connection for status queries
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DBOS database: %w", err)
	}

	return &Runtime{
		dbosContext: dbosCtx,
		queue:       &queue,
		config:      cfg,
		db:          db,
		logger:      logging.OrNop(logger),
	}, nil
}

// queueOptions bounds how many runs this worker executes at once and,
// when StartsPerMinute is set, how many runs start per minute across all
// workers sharing the queue
func queueOptions(cfg Config) []dbos.QueueOption {
	opts := []dbos.QueueOption{
		dbos.WithWorkerConcurrency(cfg.Concurrency),
		dbos.WithPriorityEnabled(),
	}
	if cfg.StartsPerMinute > 0 {
		opts = append(opts, dbos.WithRateLimiter(&dbos.RateLimiter{
			Limit:  cfg.StartsPerMinute,
			Period: time.Minute,
		}))
	}
	return opts
}

// WorkflowID names a run by job, source content and enqueue time.
// Translate runs have no content and skip that part.
func WorkflowID(req pipeline.ProcessRequest, now time.Time) string {
	parts := []string{req.Job}
	if req.ContentID != "" {
		parts = append(parts, req.ContentID)
	}
	parts = append(parts, strconv.FormatInt(now.UnixNano(), 10))
	return strings.Join(parts, "-")
}

// EnqueueOptions returns the workflow ID and queue options for req
func (r *Runtime) EnqueueOptions(req pipeline.ProcessRequest, now time.Time) (string, []dbos.WorkflowOption) {
	id := WorkflowID(req, now)
	opts := []dbos.WorkflowOption{
		dbos.WithWorkflowID(id),
		dbos.WithQueue(r.config.QueueName),
	}
	if p, ok := jobPriority[req.Job]; ok {
		opts = append(opts, dbos.WithPriority(p))
	}
	return id, opts
}

// Launch starts the DBOS runtime and workers
func (r *Runtime) Launch() error {
	if err := dbos.Launch(r.dbosContext); err != nil {
		return err
	}
	r.logger.Infof("DBOS launched (app=%s, queue=%s, concurrency=%d, starts_per_minute=%d)",
		r.config.AppName, r.config.QueueName, r.config.Concurrency, r.config.StartsPerMinute)
	return nil
}

// Shutdown gracefully shuts down the DBOS runtime
func (r *Runtime) Shutdown(timeout time.Duration) error {
	dbos.Shutdown(r.dbosContext, timeout)
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Context returns the DBOS context
func (r *Runtime) Context() dbos.DBOSContext {
	return r.dbosContext
}
