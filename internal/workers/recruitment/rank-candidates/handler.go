// internal/workers/recruitment/rank-candidates/handler.go
package rankcandidates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "rank-candidates"
)

var (
	ErrMatchInputMissing = errors.New("MATCH_INPUT_MISSING")
)

// ProfileLoader is satisfied by *repository.Store.
type ProfileLoader interface {
	LoadCandidate(ctx context.Context, id string) (*matching.CandidateProfile, error)
	LoadRequisition(ctx context.Context, id string) (*matching.Requisition, error)
}

type Handler struct {
	config     *Config
	store      ProfileLoader
	scorer     *matching.Scorer
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, store ProfileLoader, log logger.Logger) (*Handler, error) {
	scorer, err := matching.ScorerForStrategy(config.Strategy)
	if err != nil {
		return nil, fmt.Errorf("rank-candidates: %w", err)
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		scorer:     scorer,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
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

type candidateSlot struct {
	id          string
	searchScore float64
	profile     *matching.CandidateProfile
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	requisition, err := h.resolveRequisition(ctx, input)
	if err != nil {
		return nil, err
	}

	slots := collectCandidates(input)
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: candidateIds, candidates or profiles required", ErrMatchInputMissing)
	}
	skipped, err := h.loadProfiles(ctx, slots)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedCandidate, 0, len(slots))
	evaluated := 0
	for _, slot := range slots {
		if slot.profile == nil {
			continue
		}
		evaluated++

		result := h.scorer.Analyze(*slot.profile, *requisition)
		if result.Score < input.MinScore {
			continue
		}
		counts := result.Counts()
		ranked = append(ranked, RankedCandidate{
			CandidateID:  slot.id,
			MatchScore:   result.Score,
			MatchedCount: counts.Matched,
			PartialCount: counts.Partial,
			MissingCount: counts.Missing,
			SearchScore:  slot.searchScore,
		})
	}
	metrics.CandidatesRanked.Add(float64(evaluated))

	sortRanked(ranked)

	limit := input.Limit
	if limit <= 0 || limit > h.config.MaxItems {
		limit = h.config.MaxItems
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(slots),
		"evaluated":   evaluated,
		"skipped":     skipped,
		"outputCount": len(ranked),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &Output{
		RankedCandidates: ranked,
		EvaluatedCount:   evaluated,
		SkippedCount:     skipped,
	}, nil
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

// collectCandidates merges inline profiles, search hits and bare ids,
// keeping the first occurrence of each id.
func collectCandidates(input *Input) []*candidateSlot {
	var slots []*candidateSlot
	byID := make(map[string]*candidateSlot)

	add := func(id string) *candidateSlot {
		if slot, ok := byID[id]; ok {
			return slot
		}
		slot := &candidateSlot{id: id}
		byID[id] = slot
		slots = append(slots, slot)
		return slot
	}

	for i := range input.Profiles {
		p := input.Profiles[i]
		if p.ID == "" {
			continue
		}
		slot := add(p.ID)
		if slot.profile == nil {
			slot.profile = &p
		}
	}
	for _, hit := range input.SearchResults {
		if hit.CandidateID == "" {
			continue
		}
		slot := add(hit.CandidateID)
		if slot.searchScore == 0 {
			slot.searchScore = hit.SearchScore
		}
	}
	for _, id := range input.CandidateIDs {
		if id != "" {
			add(id)
		}
	}
	return slots
}

// loadProfiles fills in missing profiles concurrently. Candidates that fail
// to load are left nil and counted; only context cancellation aborts.
func (h *Handler) loadProfiles(ctx context.Context, slots []*candidateSlot) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)

	var mu sync.Mutex
	skipped := 0

	for _, slot := range slots {
		if slot.profile != nil {
			continue
		}
		slot := slot
		g.Go(func() error {
			profile, err := h.store.LoadCandidate(gctx, slot.id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				h.logger.Warn("skipping candidate", map[string]interface{}{
					"candidateId": slot.id,
					"error":       err,
				})
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			slot.profile = profile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return skipped, err
	}
	return skipped, nil
}

// sortRanked orders by score, then matched count, then search score, then
// candidate id.
func sortRanked(ranked []RankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.MatchedCount != b.MatchedCount {
			return a.MatchedCount > b.MatchedCount
		}
		if a.SearchScore != b.SearchScore {
			return a.SearchScore > b.SearchScore
		}
		return a.CandidateID < b.CandidateID
	})
}

func classify(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMatchInputMissing):
		return apperrors.New(apperrors.ErrCodeMatchInputMissing, err.Error())
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
