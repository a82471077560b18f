package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
)

const DefaultDeadLetterKey = "events:deadletter"

// Sink receives events from the worker, e.g. a Kafka topic.
type Sink interface {
	Deliver(ctx context.Context, event events.Event) error
}

// DeadLetter is an event that exhausted its retries.
type DeadLetter struct {
	Event    events.Event `json:"event"`
	Error    string       `json:"error"`
	Attempts int          `json:"attempts"`
	FailedAt time.Time    `json:"failed_at"`
}

// EventWorker delivers bus events to a sink off the request path.
type EventWorker struct {
	sink          Sink
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan events.Event
	deadLetterKey string
	logger        *zerolog.Logger
	wait          func(ctx context.Context, d time.Duration) error
}

func NewEventWorker(sink Sink, redisClient *redis.Client, retry RetryPolicy, queueSize int, deadLetterKey string, logger *zerolog.Logger) *EventWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if deadLetterKey == "" {
		deadLetterKey = DefaultDeadLetterKey
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &EventWorker{
		sink:          sink,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan events.Event, queueSize),
		deadLetterKey: deadLetterKey,
		logger:        logger,
		wait:          sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Handle queues an event for delivery. It never blocks the publisher:
// when the queue is full the event goes straight to the dead-letter list.
func (w *EventWorker) Handle(event *events.Event) error {
	select {
	case w.queue <- *event:
		return nil
	default:
		w.logger.Warn().Str("event_id", event.ID).Str("event_type", event.Type).Msg("event queue full")
		w.pushDeadLetter(context.Background(), *event, errors.New("queue full"), 0)
		return nil
	}
}

// Start delivers queued events until ctx is done.
func (w *EventWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("event worker started")
	defer w.logger.Info().Msg("event worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			w.deliver(ctx, event)
		}
	}
}

func (w *EventWorker) deliver(ctx context.Context, event events.Event) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.sink.Deliver(ctx, event)
		if lastErr == nil {
			metrics.IncEventDelivery("delivered")
			return
		}

		if w.retryPolicy.Exhausted(attempt) {
			break
		}

		metrics.IncEventDelivery("retry")
		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(lastErr).
			Str("event_id", event.ID).
			Int("attempt", attempt).
			Dur("next_delay", delay).
			Msg("event delivery failed, retrying")

		if err := w.wait(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	w.logger.Error().Err(lastErr).Str("event_id", event.ID).Str("event_type", event.Type).Msg("event delivery gave up")
	// ctx may already be cancelled at shutdown; the dead letter still has to land.
	w.pushDeadLetter(context.WithoutCancel(ctx), event, lastErr, w.retryPolicy.MaxRetries)
}

func (w *EventWorker) pushDeadLetter(ctx context.Context, event events.Event, cause error, attempts int) {
	metrics.IncEventDelivery("dead_letter")
	if w.redis == nil {
		return
	}

	entry := DeadLetter{Event: event, Attempts: attempts, FailedAt: time.Now().UTC()}
	if cause != nil {
		entry.Error = cause.Error()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		w.logger.Error().Err(err).Str("event_id", event.ID).Msg("encode dead letter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("event_id", event.ID).Msg("dead letter push failed")
	}
}

// DeadLetters returns up to limit of the most recent dead letters.
func (w *EventWorker) DeadLetters(ctx context.Context, limit int64) ([]DeadLetter, error) {
	if w.redis == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	raw, err := w.redis.LRange(ctx, w.deadLetterKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, item := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(item), &dl); err != nil {
			w.logger.Warn().Err(err).Msg("skip malformed dead letter")
			continue
		}
		out = append(out, dl)
	}
	return out, nil
}
