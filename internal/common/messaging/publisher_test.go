// internal/common/messaging/publisher_test.go
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"recruitment-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockConn) Close() {
	m.Called()
}

func TestPublishMatchRecorded(t *testing.T) {
	conn := new(mockConn)
	p := newPublisher(conn, "", logger.NewTestLogger(t))

	event := MatchRecordedEvent{
		MatchID:       "m-1",
		CandidateID:   "cand-1",
		RequisitionID: "req-1",
		MatchScore:    80,
		Status:        "created",
		RecordedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	var published []byte
	conn.On("Publish", MatchRecordedSubject, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]byte) }).
		Return(nil)

	require.NoError(t, p.PublishMatchRecorded(context.Background(), event))

	var decoded MatchRecordedEvent
	require.NoError(t, json.Unmarshal(published, &decoded))
	assert.Equal(t, event, decoded)
	conn.AssertExpectations(t)
}

func TestPublishMatchRecorded_Error(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	conn := new(mockConn)
	p := newPublisher(conn, "custom.subject", logger.NewZapAdapter(zap.New(core)))

	conn.On("Publish", "custom.subject", mock.Anything).Return(errors.New("nats: connection closed"))

	err := p.PublishMatchRecorded(context.Background(), MatchRecordedEvent{MatchID: "m-2"})
	assert.ErrorContains(t, err, "connection closed")

	failures := logs.FilterMessage("failed to publish match event").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Equal(t, "m-2", fields["matchId"])
	assert.Equal(t, "custom.subject", fields["subject"])
	assert.Equal(t, "nats: connection closed", fields["error"])
}

func TestClose(t *testing.T) {
	conn := new(mockConn)
	conn.On("Close").Return()

	newPublisher(conn, "", logger.NewTestLogger(t)).Close()
	conn.AssertCalled(t, "Close")

	var noop NoopPublisher
	assert.NoError(t, noop.PublishMatchRecorded(context.Background(), MatchRecordedEvent{}))
}
