package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a topic keyed by book_id, so every sale of a book
// lands on the same partition in ledger order. Writes go through a circuit breaker so
// an unavailable broker fails fast instead of stalling the request path.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
	logger  *zap.Logger
}

// DefaultWriteTimeout bounds how long a committed sale waits on the broker.
const DefaultWriteTimeout = 2 * time.Second

// NewKafkaWriter builds the writer used in production. writeTimeout caps each broker
// round trip.
func NewKafkaWriter(brokers []string, topic string, writeTimeout time.Duration) *kafka.Writer {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher wraps writer with a breaker that opens after five consecutive
// failures and probes again after 30 seconds. Each publish is abandoned after timeout,
// and a timed-out publish counts as a failure.
func NewKafkaPublisher(writer MessageWriter, timeout time.Duration, logger *zap.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	settings := gobreaker.Settings{
		Name:    "kafka-sales",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &KafkaPublisher{
		writer:  writer,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
		tracer:  otel.Tracer("bookledger/events"),
		logger:  logger,
	}
}

func (p *KafkaPublisher) PublishSaleRecorded(ctx context.Context, evt SaleRecorded) error {
	ctx, span := p.tracer.Start(ctx, "events.publish_sale_recorded",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("event.id", evt.EventID.String()),
			attribute.Int64("sale.id", evt.Sale.ID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(SaleRecordedType)},
		{Key: "event_id", Value: []byte(evt.EventID.String())},
	}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(strconv.FormatInt(evt.Sale.BookID, 10)),
		Value:   payload,
		Headers: headers,
		Time:    evt.OccurredAt,
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(writeCtx, msg)
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("write sale event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
