// Package errors provides the error codes and BPMN error mapping used by the
// recruitment workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

// Request and input errors.
const (
	ErrCodeParseError           ErrorCode = "PARSE_ERROR"
	ErrCodeMatchRequestInvalid  ErrorCode = "MATCH_REQUEST_INVALID"
	ErrCodeMatchInputMissing    ErrorCode = "MATCH_INPUT_MISSING"
	ErrCodeInvalidMatchStrategy ErrorCode = "INVALID_MATCH_STRATEGY"
	ErrCodeCandidateNotFound    ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeRequisitionNotFound  ErrorCode = "REQUISITION_NOT_FOUND"
	ErrCodeRecruiterNotFound    ErrorCode = "RECRUITER_NOT_FOUND"
)

// Infrastructure errors.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventPublishFailed     ErrorCode = "EVENT_PUBLISH_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the structured error every worker reports to the engine.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what gets thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

var defaultMessages = map[ErrorCode]string{
	ErrCodeParseError:                    "Job variables could not be parsed",
	ErrCodeMatchRequestInvalid:           "Match request failed schema validation",
	ErrCodeMatchInputMissing:             "Nothing to score",
	ErrCodeInvalidMatchStrategy:          "Unknown match strategy",
	ErrCodeCandidateNotFound:             "Candidate not found",
	ErrCodeRequisitionNotFound:           "Requisition not found",
	ErrCodeRecruiterNotFound:             "Recruiter not found",
	ErrCodeDatabaseConnectionFailed:      "Database connection error",
	ErrCodeQueryExecutionFailed:          "Database query execution error",
	ErrCodeQueryTimeout:                  "Database query timeout",
	ErrCodeDatabaseInsertFailed:          "Database insert operation failed",
	ErrCodeElasticsearchConnectionFailed: "Elasticsearch connection error",
	ErrCodeSearchQueryFailed:             "Elasticsearch query error",
	ErrCodeSearchTimeout:                 "Elasticsearch query timeout",
	ErrCodeIndexNotFound:                 "Elasticsearch index not found",
	ErrCodeNotificationSendFailed:        "Notification delivery failed",
	ErrCodeEventPublishFailed:            "Event publish failed",
	ErrCodeInternal:                      "Unexpected error",
}

// New builds a StandardError for code. Retryable follows GetRetryCount.
func New(code ErrorCode, details string) *StandardError {
	msg, ok := defaultMessages[code]
	if !ok {
		msg = strings.ReplaceAll(strings.ToLower(string(code)), "_", " ")
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// Wrap is New with err kept as the cause and used as the details.
func Wrap(code ErrorCode, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	e := New(code, details)
	e.cause = err
	return e
}

func NewMatchRequestInvalidError(details string) *StandardError {
	return New(ErrCodeMatchRequestInvalid, details)
}

func NewCandidateNotFoundError(candidateID string) *StandardError {
	return New(ErrCodeCandidateNotFound, fmt.Sprintf("candidateId: %s", candidateID))
}

func NewRequisitionNotFoundError(requisitionID string) *StandardError {
	return New(ErrCodeRequisitionNotFound, fmt.Sprintf("requisitionId: %s", requisitionID))
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return Wrap(ErrCodeDatabaseConnectionFailed, err)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return Wrap(ErrCodeDatabaseInsertFailed, err)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return New(ErrCodeIndexNotFound, fmt.Sprintf("indexName: %s", indexName))
}

func NewSearchTimeoutError(indexName string) *StandardError {
	return New(ErrCodeSearchTimeout, fmt.Sprintf("indexName: %s", indexName))
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the codes used in the process
// models. Codes not listed are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                    "MATCH_REQUEST_INVALID",
	ErrCodeQueryExecutionFailed:          "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:                  "DATABASE_CONNECTION_FAILED",
	ErrCodeElasticsearchConnectionFailed: "SEARCH_QUERY_FAILED",
}

// GetRetryCount returns how many times the engine should retry a job that
// failed with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		"TIMEOUT_ERROR":
		return 2

	case ErrCodeEventPublishFailed:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// GetErrorCategory groups codes for dashboards and logs.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND") && !strings.Contains(codeStr, "INDEX"):
		return "LOOKUP"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
