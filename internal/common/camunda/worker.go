// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"recruitment-workers/internal/common/config"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JobHandler is implemented by every recruitment worker. ctx carries the
// job span.
type JobHandler interface {
	HandleJob(ctx context.Context, client worker.JobClient, job entities.Job)
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// StartWorker opens a job worker for taskType with the handler wrapped in
// tracing and metrics.
func StartWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log *zap.Logger,
) worker.JobWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs)).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", cfg.MaxJobsActive),
		zap.Int("timeoutMs", cfg.Timeout),
	)
	return jobWorker
}

// Instrument adapts a JobHandler to the zeebe handler signature.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		ctx, span := observability.StartJobSpan(context.Background(), taskType, job.GetKey(), job.GetProcessInstanceKey())
		tracked := &trackingClient{JobClient: client, status: StatusAbandoned}

		handler.HandleJob(ctx, tracked, job)

		span.SetAttributes(attribute.String("job.status", tracked.status))
		span.End()

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(ctx, taskType, tracked.status)
		obs.RecordJobDuration(ctx, taskType, elapsed, tracked.status)
	}
}

// trackingClient records which command the handler issued for the job.
type trackingClient struct {
	worker.JobClient
	status string
}

func (c *trackingClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = StatusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *trackingClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = StatusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *trackingClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = StatusFailed
	return c.JobClient.NewThrowErrorCommand()
}
