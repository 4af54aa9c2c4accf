// internal/common/observability/tracing_test.go
package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestJobSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartJobSpan(context.Background(), "calculate-candidate-match", 42, 7)
	_, child := StartSpan(ctx, "load candidate")
	EndSpan(child, nil)
	EndSpan(span, errors.New("candidate not found"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "load candidate", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())

	job := ended[1]
	assert.Equal(t, "calculate-candidate-match", job.Name())
	assert.Equal(t, codes.Error, job.Status().Code)
	assert.Len(t, job.Events(), 1)
}

func TestObservability_NoopIsSafe(t *testing.T) {
	var nilObs *Observability
	obs := NewNoop()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "rank-candidates", "completed")
		obs.RecordJobDuration(context.Background(), "rank-candidates", time.Second, "completed")
		nilObs.RecordJobProcessed(context.Background(), "rank-candidates", "failed")
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
	assert.NoError(t, nilObs.Shutdown(context.Background()))
}
