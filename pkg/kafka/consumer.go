package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
)

// DefaultMaxAttempts is how often a handler is tried before its message is
// logged and skipped.
const DefaultMaxAttempts = 3

// Handler processes one event. Returning an error asks for a retry while
// attempts remain.
type Handler func(ctx context.Context, event *Event) error

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	// MaxAttempts bounds handler invocations per message; 1 disables retries.
	MaxAttempts  int
	RetryBackoff time.Duration
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a consumer group and feeds decoded events to a Handler.
// Offsets are committed after the handler succeeds or gives up, so a message
// is never redelivered because of a handler error.
type Consumer struct {
	reader      messageReader
	group       string
	topics      []string
	handler     Handler
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	closeOnce   sync.Once
}

func NewConsumer(cfg ConsumerConfig, handler Handler, l *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newConsumer(r, cfg, handler, l)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, l *slog.Logger) *Consumer {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	return &Consumer{
		reader:      r,
		group:       cfg.GroupID,
		topics:      cfg.Topics,
		handler:     handler,
		maxAttempts: attempts,
		backoff:     backoff,
		logger:      l.With(slog.String("consumer_group", cfg.GroupID)),
	}
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.Any("topics", c.topics), slog.Int("max_attempts", c.maxAttempts))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return c.Close()
			}
			if errors.Is(err, kafka.ErrGroupClosed) {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			if !sleep(ctx, c.backoff) {
				return c.Close()
			}
			continue
		}

		if !c.process(ctx, msg) {
			return c.Close()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process runs the handler for msg. It returns false when ctx was canceled
// mid-retry, in which case the message must not be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("dropping undecodable message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return true
	}

	hctx := otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &msg.Headers})
	if event.CorrelationID != "" {
		hctx = logger.WithCorrelationID(hctx, event.CorrelationID)
	}
	l := logger.WithContext(hctx, c.logger).With(
		slog.String("topic", msg.Topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)

	start := time.Now()
	defer func() {
		consumerDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if lastErr = c.handler(hctx, event); lastErr == nil {
			consumerProcessed.WithLabelValues(msg.Topic, c.group).Inc()
			return true
		}
		if attempt < c.maxAttempts {
			l.Warn("handler failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()),
			)
			if !sleep(ctx, time.Duration(attempt)*c.backoff) {
				return false
			}
		}
	}

	consumerFailed.WithLabelValues(msg.Topic, c.group).Inc()
	l.Error("handler failed, skipping message",
		slog.Int("attempts", c.maxAttempts),
		slog.Int64("offset", msg.Offset),
		slog.String("error", lastErr.Error()),
	)
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
