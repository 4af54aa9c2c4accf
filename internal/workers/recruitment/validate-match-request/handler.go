// internal/workers/recruitment/validate-match-request/handler.go
package validatematchrequest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-match-request"
)

var (
	ErrMatchRequestInvalid = errors.New("MATCH_REQUEST_INVALID")
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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
		h.failJob(ctx, client, job, h.classify(err, output))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	candidate, err := validateDocument(validation.DocumentCandidate, input.Candidate)
	if err != nil {
		return nil, err
	}
	requisition, err := validateDocument(validation.DocumentRequisition, input.Requisition)
	if err != nil {
		return nil, err
	}

	result := validation.Merge(candidate, requisition)
	output := &Output{
		IsValid:          result.Valid,
		ValidationErrors: result.Errors,
	}
	if output.ValidationErrors == nil {
		output.ValidationErrors = []validation.ValidationError{}
	}

	h.logger.Info("match request validated", map[string]interface{}{
		"isValid":    output.IsValid,
		"errorCount": len(output.ValidationErrors),
	})

	if !output.IsValid && h.config.FailOnInvalid {
		return output, fmt.Errorf("%w: %v", ErrMatchRequestInvalid, result.GetErrorMessages())
	}
	return output, nil
}

func validateDocument(doc validation.Document, raw json.RawMessage) (*validation.ValidationResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return validation.Missing(doc), nil
	}
	result, err := validation.ValidateJSON(doc, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchRequestInvalid, err)
	}
	return result, nil
}

func (h *Handler) classify(err error, output *Output) error {
	stdErr := apperrors.NewMatchRequestInvalidError(err.Error())
	if output != nil {
		stdErr.WithMetadata("validationErrors", output.ValidationErrors)
	}
	return stdErr
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
