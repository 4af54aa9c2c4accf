// internal/workers/recruitment/notify-recruiter/handler.go
package notifyrecruiter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "recruitment-workers/internal/common/errors"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/metrics"
	"recruitment-workers/internal/common/validation"
	"recruitment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-recruiter"
)

var (
	ErrMatchInputMissing = errors.New("MATCH_INPUT_MISSING")
	ErrQueryFailed       = errors.New("QUERY_EXECUTION_FAILED")
)

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, from, to, subject, body string) (string, error)
}

// SMSSender is satisfied by *aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	email      EmailSender
	sms        SMSSender
	template   models.NotificationTemplate
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		email:      email,
		sms:        sms,
		template:   defaultTemplate,
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
		h.failJob(ctx, client, job, classify(err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.RequisitionID == "" {
		return nil, fmt.Errorf("%w: requisitionId is required", ErrMatchInputMissing)
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Channels:       []string{},
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if input.MatchScore < h.config.MinScore {
		h.logger.Info("match below notification threshold", map[string]interface{}{
			"candidateId": input.CandidateID,
			"matchScore":  input.MatchScore,
			"minScore":    h.config.MinScore,
		})
		output.Status = models.NotificationSkipped
		return output, nil
	}

	recruiter, err := h.getRecruiter(ctx, input.RequisitionID)
	if errors.Is(err, sql.ErrNoRows) {
		h.logger.Warn("recruiter not found", map[string]interface{}{
			"requisitionId": input.RequisitionID,
		})
		output.Status = models.NotificationDisabled
		return output, nil
	}
	if err != nil {
		return nil, err
	}

	data := templateData(input, recruiter)
	subject := renderTemplate(h.template.Subject, data)
	body := renderTemplate(h.template.Body, data)

	failed := false
	h.dropInvalidContacts(recruiter)

	if h.config.EmailEnabled && h.email != nil && recruiter.Email != "" {
		if _, err := h.email.SendEmail(ctx, h.config.FromEmail, recruiter.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": recruiter.Email,
			})
			failed = true
		} else {
			output.Channels = append(output.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.sms != nil && recruiter.Phone != "" && input.MatchScore >= h.config.SMSScoreThreshold {
		message := renderTemplate(h.template.SMSBody, data)
		if _, err := h.sms.SendSMS(ctx, recruiter.Phone, message); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": recruiter.Phone,
			})
			failed = true
		} else {
			output.Channels = append(output.Channels, ChannelSMS)
		}
	}

	switch {
	case failed:
		output.Status = models.NotificationFailed
	case len(output.Channels) > 0:
		output.Status = models.NotificationSent
	default:
		output.Status = models.NotificationDisabled
	}

	h.logger.Info("recruiter notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"requisitionId":  input.RequisitionID,
		"recruiterId":    recruiter.ID,
		"status":         output.Status,
		"channels":       output.Channels,
	})

	return output, nil
}

// dropInvalidContacts blanks addresses SES or SNS would reject.
func (h *Handler) dropInvalidContacts(r *models.Recruiter) {
	if r.Email != "" && !validation.ValidateEmail(r.Email) {
		h.logger.Warn("recruiter email invalid, skipping email", map[string]interface{}{
			"recruiterId": r.ID,
		})
		r.Email = ""
	}
	if r.Phone != "" && !validation.ValidatePhone(r.Phone) {
		h.logger.Warn("recruiter phone not E.164, skipping SMS", map[string]interface{}{
			"recruiterId": r.ID,
		})
		r.Phone = ""
	}
}

func (h *Handler) getRecruiter(ctx context.Context, requisitionID string) (*models.Recruiter, error) {
	var (
		r                         models.Recruiter
		name, email, phone, title sql.NullString
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.email, r.phone, jr.titulo
		FROM job_requisitions jr
		JOIN recruiters r ON r.id = jr.recruiter_id
		WHERE jr.id = $1`, requisitionID).Scan(&r.ID, &name, &email, &phone, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: recruiter lookup: %v", ErrQueryFailed, err)
	}
	r.Name = name.String
	r.Email = email.String
	r.Phone = phone.String
	r.RequisitionTitle = title.String
	return &r, nil
}

func templateData(input *Input, recruiter *models.Recruiter) map[string]interface{} {
	candidateName := input.CandidateName
	if candidateName == "" {
		candidateName = input.CandidateID
	}
	return map[string]interface{}{
		"recruiterName":    recruiter.Name,
		"requisitionTitle": recruiter.RequisitionTitle,
		"requisitionId":    input.RequisitionID,
		"candidateId":      input.CandidateID,
		"candidateName":    candidateName,
		"matchScore":       input.MatchScore,
		"matchedCount":     input.MatchedCount,
		"missingCount":     input.MissingCount,
	}
}

// renderTemplate substitutes {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case int:
			value = fmt.Sprintf("%d", t)
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMatchInputMissing):
		return apperrors.New(apperrors.ErrCodeMatchInputMissing, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeQueryTimeout, err)
	case errors.Is(err, ErrQueryFailed):
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
