// internal/workers/recruitment/search-candidates/handler.go
package searchcandidates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/workers/recruitment/search-candidates/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "search-candidates"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
)

type Handler struct {
	config     *Config
	client     *elasticsearch.Client
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleJob(context.Background(), client, job)
}

func (h *Handler) HandleJob(ctx context.Context, client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.Wrap(apperrors.ErrCodeParseError, err))
		return
	}

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(execCtx, &input)
	if err != nil {
		h.failJob(ctx, client, job, h.classify(err, h.indexName(&input)))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) indexName(input *Input) string {
	if input.IndexName != "" {
		return input.IndexName
	}
	return h.config.DefaultIndex
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrSearchQueryFailed)
	}
	index := h.indexName(input)

	req, err := queries.NewSearchRequest(index, input.Requisition, input.Pagination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		esErr := queries.DecodeError(res.Body)
		if res.StatusCode == http.StatusNotFound || esErr.Error.Type == "index_not_found_exception" {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrSearchQueryFailed, res.Status(), esErr.Error.Reason)
	}

	parsed, err := queries.DecodeSearchResponse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	if parsed.TimedOut {
		return nil, fmt.Errorf("%w: shard timeout on %s", ErrSearchTimeout, index)
	}

	output := &Output{
		Candidates: make([]CandidateHit, 0, len(parsed.Hits.Hits)),
		TotalHits:  parsed.Hits.Total.Value,
		Took:       parsed.Took,
	}
	if parsed.Hits.MaxScore != nil {
		output.MaxScore = *parsed.Hits.MaxScore
	}
	for _, hit := range parsed.Hits.Hits {
		c := CandidateHit{CandidateID: hit.ID}
		if hit.Score != nil {
			c.SearchScore = *hit.Score
		}
		output.Candidates = append(output.Candidates, c)
	}

	h.logger.Info("candidate search completed", map[string]interface{}{
		"index":     index,
		"totalHits": output.TotalHits,
		"returned":  len(output.Candidates),
	})
	return output, nil
}

func (h *Handler) classify(err error, index string) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(index)
	case errors.Is(err, ErrSearchTimeout):
		return apperrors.NewSearchTimeoutError(index)
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return apperrors.Wrap(apperrors.ErrCodeElasticsearchConnectionFailed, err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeSearchQueryFailed, err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
