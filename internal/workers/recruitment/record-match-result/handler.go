// internal/workers/recruitment/record-match-result/handler.go
package recordmatchresult

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/messaging"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-match-result"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrMatchInputMissing    = errors.New("MATCH_INPUT_MISSING")
)

type Handler struct {
	config     *Config
	db         *sql.DB
	publisher  messaging.Publisher
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
	newID      func() string
}

func NewHandler(config *Config, db *sql.DB, publisher messaging.Publisher, log logger.Logger) *Handler {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		publisher:  publisher,
		logger:     l,
		errHandler: apperrors.NewErrorHandler(l),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
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
		h.failJob(ctx, client, job, classify(err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CandidateID == "" || input.RequisitionID == "" {
		return nil, fmt.Errorf("%w: candidateId and requisitionId are required", ErrMatchInputMissing)
	}

	matches := input.Matches
	if matches == nil {
		matches = []matching.MatchEntry{}
	}
	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal matches: %w", ErrDatabaseInsertFailed, err)
	}

	recordedAt := h.now()
	record := models.MatchRecord{
		CandidateID:   input.CandidateID,
		RequisitionID: input.RequisitionID,
		MatchScore:    input.MatchScore,
		EarnedPoints:  input.EarnedPoints,
		TotalPoints:   input.TotalPoints,
		Matches:       matchesJSON,
		UpdatedAt:     recordedAt,
	}

	status, err := h.upsert(ctx, &record)
	if err != nil {
		return nil, err
	}

	if h.config.WriteAudit {
		h.writeAudit(ctx, models.AuditEntry{
			EventType:    "candidate_match_" + status,
			ResourceType: "candidate_match",
			ResourceID:   record.ID,
			Details: map[string]interface{}{
				"candidateId":   input.CandidateID,
				"requisitionId": input.RequisitionID,
				"matchScore":    input.MatchScore,
			},
			CreatedAt: recordedAt,
		})
	}

	event := messaging.MatchRecordedEvent{
		MatchID:       record.ID,
		CandidateID:   input.CandidateID,
		RequisitionID: input.RequisitionID,
		MatchScore:    input.MatchScore,
		Status:        status,
		RecordedAt:    recordedAt,
	}
	if err := h.publisher.PublishMatchRecorded(ctx, event); err != nil {
		h.logger.Warn("match event publish failed", map[string]interface{}{
			"error":   err,
			"matchId": record.ID,
		})
	}

	h.logger.Info("match result recorded", map[string]interface{}{
		"matchId":       record.ID,
		"candidateId":   input.CandidateID,
		"requisitionId": input.RequisitionID,
		"matchScore":    input.MatchScore,
		"status":        status,
	})

	return &Output{
		MatchID:    record.ID,
		Status:     status,
		RecordedAt: recordedAt.Format(time.RFC3339),
	}, nil
}

// upsert writes the row for the candidate/requisition pair in one statement,
// relying on the unique (candidate_id, requisition_id) constraint. It sets
// record.ID and returns the resulting status.
func (h *Handler) upsert(ctx context.Context, record *models.MatchRecord) (string, error) {
	var (
		id       string
		inserted bool
	)
	err := h.db.QueryRowContext(ctx, `
		INSERT INTO candidate_matches (
			id, candidate_id, requisition_id, match_score,
			earned_points, total_points, matches, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (candidate_id, requisition_id) DO UPDATE SET
			match_score = EXCLUDED.match_score,
			earned_points = EXCLUDED.earned_points,
			total_points = EXCLUDED.total_points,
			matches = EXCLUDED.matches,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted`,
		h.newID(),
		record.CandidateID,
		record.RequisitionID,
		record.MatchScore,
		record.EarnedPoints,
		record.TotalPoints,
		[]byte(record.Matches),
		record.UpdatedAt,
	).Scan(&id, &inserted)
	if err != nil {
		return "", fmt.Errorf("%w: upsert failed: %w", ErrDatabaseInsertFailed, err)
	}

	record.ID = id
	if inserted {
		record.CreatedAt = record.UpdatedAt
		return models.MatchStatusCreated, nil
	}
	return models.MatchStatusUpdated, nil
}

// writeAudit never fails the job.
func (h *Handler) writeAudit(ctx context.Context, entry models.AuditEntry) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.EventType,
		entry.ResourceType,
		entry.ResourceID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":   err,
			"matchId": entry.ResourceID,
		})
	}
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMatchInputMissing):
		return apperrors.New(apperrors.ErrCodeMatchInputMissing, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, err)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
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
