package dbosruntime

import (
	"testing"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

func applyQueueOptions(cfg Config) dbos.WorkflowQueue {
	var q dbos.WorkflowQueue
	for _, opt := range queueOptions(cfg) {
		opt(&q)
	}
	return q
}

func TestQueueOptions(t *testing.T) {
	cfg := Config{}
	cfg.WithDefaults()

	q := applyQueueOptions(cfg)
	require.NotNil(t, q.WorkerConcurrency)
	assert.Equal(t, 4, *q.WorkerConcurrency)
	assert.True(t, q.PriorityEnabled)
	assert.Nil(t, q.RateLimit)

	cfg.StartsPerMinute = 30
	q = applyQueueOptions(cfg)
	require.NotNil(t, q.RateLimit)
	assert.Equal(t, 30, q.RateLimit.Limit)
	assert.Equal(t, time.Minute, q.RateLimit.Period)
}

func TestWorkflowID(t *testing.T) {
	now := time.Unix(0, 42)

	assert.Equal(t, "narrate-c1-42", WorkflowID(pipeline.ProcessRequest{Job: pipeline.JobNarrate, ContentID: "c1"}, now))
	assert.Equal(t, "translate-42", WorkflowID(pipeline.ProcessRequest{Job: pipeline.JobTranslate, Text: "hi"}, now))
}

func TestEnqueueOptions(t *testing.T) {
	r, _ := newMockRuntime(t)

	id, opts := r.EnqueueOptions(pipeline.ProcessRequest{Job: pipeline.JobCaption, ContentID: "c2"}, time.Unix(0, 7))
	assert.Equal(t, "caption-c2-7", id)
	assert.Len(t, opts, 3)

	_, opts = r.EnqueueOptions(pipeline.ProcessRequest{Job: "custom"}, time.Unix(0, 7))
	assert.Len(t, opts, 2, "unknown jobs keep the default priority")
}

func TestJobPriorityOrder(t *testing.T) {
	assert.Less(t, jobPriority[pipeline.JobTranslate], jobPriority[pipeline.JobCaption])
	assert.Less(t, jobPriority[pipeline.JobCaption], jobPriority[pipeline.JobNarrate])
}
