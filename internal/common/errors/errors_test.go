// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeSearchQueryFailed, 3},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeEventPublishFailed, 1},
		{ErrCodeCandidateNotFound, 0},
		{ErrCodeRequisitionNotFound, 0},
		{ErrCodeIndexNotFound, 0},
		{ErrCodeMatchRequestInvalid, 0},
		{ErrCodeInvalidMatchStrategy, 0},
		{"SOMETHING_ELSE", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCandidateNotFoundError("c-9").WithMetadata("candidateId", "c-9")

	bpmn := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CANDIDATE_NOT_FOUND", bpmn.Code)
	assert.False(t, bpmn.Retryable)
	assert.Equal(t, 0, bpmn.Retries)
	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "CANDIDATE_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "candidateId: c-9", vars["errorDetails"])
	assert.Equal(t, "c-9", vars["candidateId"])
	assert.Equal(t, "CANDIDATE_NOT_FOUND", vars["originalErrorCode"])
}

func TestConvertToBPMNError_MappedCode(t *testing.T) {
	bpmn := ConvertToBPMNError(Wrap(ErrCodeQueryExecutionFailed, stderrors.New("syntax error")))

	assert.Equal(t, "DATABASE_CONNECTION_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)
}

func TestWrapAndNormalize(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := fmt.Errorf("load candidate: %w", NewDatabaseConnectionFailedError(cause))

	stdErr := Normalize(wrapped)
	assert.Equal(t, ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Contains(t, stdErr.Error(), "connection refused")

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
}

func TestRetriesFor(t *testing.T) {
	bpmn := &BPMNError{Retries: 2}

	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), RetriesFor(job(5), bpmn))
	assert.Equal(t, int32(1), RetriesFor(job(2), bpmn))
	assert.Equal(t, int32(0), RetriesFor(job(0), bpmn))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeCandidateNotFound))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMatchStrategy))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMatchInputMissing))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestNew_UnknownCodeMessage(t *testing.T) {
	e := New("CUSTOM_THING", "x")
	require.NotNil(t, e)
	assert.Equal(t, "custom thing", e.Message)
	assert.Equal(t, "StandardError[CUSTOM_THING]: custom thing: x", e.Error())
}
