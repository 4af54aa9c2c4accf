// internal/common/messaging/publisher.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recruitment-workers/internal/common/config"
	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/observability"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
)

const MatchRecordedSubject = "recruitment.match.recorded"

// MatchRecordedEvent is emitted once a match result is persisted.
type MatchRecordedEvent struct {
	MatchID       string    `json:"match_id"`
	CandidateID   string    `json:"candidate_id"`
	RequisitionID string    `json:"requisition_id"`
	MatchScore    int       `json:"match_score"`
	Status        string    `json:"status"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type Publisher interface {
	PublishMatchRecorded(ctx context.Context, event MatchRecordedEvent) error
	Close()
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn    conn
	subject string
	logger  logger.Logger
}

func NewPublisher(cfg config.NATSConfig, log logger.Logger) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("recruitment-workers"),
		nats.Timeout(config.GetDuration(cfg.Timeout)),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return newPublisher(nc, cfg.Subject, log), nil
}

func newPublisher(c conn, subject string, log logger.Logger) *natsPublisher {
	if subject == "" {
		subject = MatchRecordedSubject
	}
	return &natsPublisher{conn: c, subject: subject, logger: log}
}

func (p *natsPublisher) PublishMatchRecorded(ctx context.Context, event MatchRecordedEvent) error {
	_, span := observability.StartSpan(ctx, "PublishMatchRecorded",
		attribute.String("nats.subject", p.subject),
	)

	data, err := json.Marshal(event)
	if err != nil {
		observability.EndSpan(span, err)
		return fmt.Errorf("marshaling match event: %w", err)
	}
	span.SetAttributes(attribute.Int("message.size", len(data)))

	if err := p.conn.Publish(p.subject, data); err != nil {
		observability.EndSpan(span, err)
		p.logger.Error("failed to publish match event", map[string]interface{}{
			"matchId": event.MatchID,
			"subject": p.subject,
			"error":   err,
		})
		return fmt.Errorf("publishing to NATS: %w", err)
	}
	observability.EndSpan(span, nil)

	p.logger.Debug("published match event", map[string]interface{}{
		"matchId": event.MatchID,
		"subject": p.subject,
	})
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher is used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishMatchRecorded(context.Context, MatchRecordedEvent) error { return nil }
func (NoopPublisher) Close()                                                         {}
