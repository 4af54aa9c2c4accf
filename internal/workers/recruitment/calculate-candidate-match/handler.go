// internal/workers/recruitment/calculate-candidate-match/handler.go
package calculatecandidatematch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-candidate-match"
)

var (
	ErrMatchInputMissing    = errors.New("MATCH_INPUT_MISSING")
	ErrInvalidMatchStrategy = errors.New("INVALID_MATCH_STRATEGY")
)

// ProfileLoader is satisfied by *repository.Store.
type ProfileLoader interface {
	LoadCandidate(ctx context.Context, id string) (*matching.CandidateProfile, error)
	LoadRequisition(ctx context.Context, id string) (*matching.Requisition, error)
}

type Handler struct {
	config     *Config
	store      ProfileLoader
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	scorers    map[string]*matching.Scorer
}

// NewHandler builds a scorer per supported strategy. The configured default
// strategy must be one of them.
func NewHandler(config *Config, store ProfileLoader, log logger.Logger) (*Handler, error) {
	scorers := make(map[string]*matching.Scorer)
	for _, strategy := range []string{matching.StrategyContains, matching.StrategyExact} {
		s, err := matching.ScorerForStrategy(strategy)
		if err != nil {
			return nil, fmt.Errorf("calculate-candidate-match: %w", err)
		}
		scorers[strategy] = s
	}
	if _, ok := scorers[config.Strategy]; !ok {
		return nil, fmt.Errorf("calculate-candidate-match: %w: %q", ErrInvalidMatchStrategy, config.Strategy)
	}

	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
		scorers:    scorers,
	}, nil
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
		h.failJob(ctx, client, job, classify(err, &input))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	strategy := strings.ToLower(strings.TrimSpace(input.MatchStrategy))
	if strategy == "" {
		strategy = h.config.Strategy
	}
	scorer, ok := h.scorers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchStrategy, input.MatchStrategy)
	}

	candidate, err := h.resolveCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	requisition, err := h.resolveRequisition(ctx, input)
	if err != nil {
		return nil, err
	}

	result := scorer.Analyze(*candidate, *requisition)
	metrics.CandidateMatchScore.WithLabelValues(strategy).Observe(float64(result.Score))

	h.logger.Info("candidate match calculated", map[string]interface{}{
		"candidateId":   input.CandidateID,
		"requisitionId": input.RequisitionID,
		"strategy":      strategy,
		"result":        result.String(),
	})

	return newOutput(result, strategy), nil
}

func (h *Handler) resolveCandidate(ctx context.Context, input *Input) (*matching.CandidateProfile, error) {
	if input.Candidate != nil {
		return input.Candidate, nil
	}
	if input.CandidateID == "" {
		return nil, fmt.Errorf("%w: candidate or candidateId required", ErrMatchInputMissing)
	}
	return h.store.LoadCandidate(ctx, input.CandidateID)
}

func (h *Handler) resolveRequisition(ctx context.Context, input *Input) (*matching.Requisition, error) {
	if input.Requisition != nil {
		return input.Requisition, nil
	}
	if input.RequisitionID == "" {
		return nil, fmt.Errorf("%w: requisition or requisitionId required", ErrMatchInputMissing)
	}
	return h.store.LoadRequisition(ctx, input.RequisitionID)
}

func classify(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMatchInputMissing):
		return apperrors.New(apperrors.ErrCodeMatchInputMissing, err.Error())
	case errors.Is(err, ErrInvalidMatchStrategy):
		return apperrors.New(apperrors.ErrCodeInvalidMatchStrategy, err.Error())
	case errors.Is(err, repository.ErrCandidateNotFound):
		return apperrors.NewCandidateNotFoundError(input.CandidateID)
	case errors.Is(err, repository.ErrRequisitionNotFound):
		return apperrors.NewRequisitionNotFoundError(input.RequisitionID)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, err)
	case errors.Is(err, repository.ErrQueryFailed):
		return apperrors.NewDatabaseConnectionFailedError(err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err)
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
