package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"securecheck/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Producer publishes JSON events to a NATS subject.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url,
		nats.Name("securecheck"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

// SendMessage publishes value under subject.key so subscribers can filter
// on the vehicle number.
func (p *Producer) SendMessage(ctx context.Context, key string, value interface{}) error {
	start := time.Now()
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	subject := p.subject
	if key != "" {
		subject = p.subject + "." + subjectToken(key)
	}

	err = p.conn.Publish(subject, valueBytes)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "message sent to NATS", "subject", subject)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}

// subjectToken replaces characters NATS reserves in subject tokens.
func subjectToken(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, key)
}
