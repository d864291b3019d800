package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"recipehub/gdpr-worker/internal/app/gdpr/entity"
	"recipehub/gdpr-worker/internal/app/gdpr/service"
	"recipehub/pkg/logger"
	"recipehub/pkg/metrics"
)

const (
	serviceName     = "gdpr-worker"
	maxRetryBackoff = 30 * time.Second
)

// errMalformedEvent marks messages that can never be processed and are
// committed so they do not block the partition.
var errMalformedEvent = errors.New("malformed user event")

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// KafkaConsumer records user_events into the audit log
type KafkaConsumer struct {
	reader       messageReader
	topic        string
	groupID      string
	auditSvc     service.AuditServiceInterface
	retryBackoff time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	auditSvc service.AuditServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
	})

	return newKafkaConsumer(reader, topic, groupID, auditSvc)
}

func newKafkaConsumer(reader messageReader, topic, groupID string, auditSvc service.AuditServiceInterface) *KafkaConsumer {
	return &KafkaConsumer{
		reader:       reader,
		topic:        topic,
		groupID:      groupID,
		auditSvc:     auditSvc,
		retryBackoff: time.Second,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-c.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

// consume commits a message only after it has been recorded or found
// malformed. Store failures are retried in place so later offsets are
// never committed past an unrecorded event.
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("Error fetching message")
			metrics.RecordKafkaError(serviceName, c.topic, "fetch")
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		timer := metrics.NewTimer()
		if !c.processWithRetry(ctx, message) {
			return
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error committing message")
			metrics.RecordKafkaError(serviceName, c.topic, "commit")
			continue
		}
		metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, timer.Duration())
	}
}

// processWithRetry returns false only when ctx ends before the message
// could be handled.
func (c *KafkaConsumer) processWithRetry(ctx context.Context, message kafka.Message) bool {
	backoff := c.retryBackoff
	for {
		err := c.processMessage(ctx, message)
		if err == nil {
			return true
		}
		if errors.Is(err, errMalformedEvent) || errors.Is(err, service.ErrInvalidEvent) {
			logger.Warn().
				Err(err).
				Int("partition", message.Partition).
				Int64("offset", message.Offset).
				Msg("Skipping unprocessable message")
			metrics.RecordKafkaError(serviceName, c.topic, "decode")
			return true
		}

		logger.Error().
			Err(err).
			Int64("offset", message.Offset).
			Dur("retry_in", backoff).
			Msg("Error processing message")
		metrics.RecordKafkaError(serviceName, c.topic, "process")

		if !sleepCtx(ctx, backoff) {
			return false
		}
		backoff *= 2
		if backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
	}
}

func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.UserEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Int64("user_id", event.UserID).
		Int("partition", message.Partition).
		Int64("offset", message.Offset).
		Msg("Received user event")

	if err := c.auditSvc.HandleEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to handle user event: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
