package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/quintaldo/pos-engine/pkg/logger"
)

// Publisher wraps a Kafka producer. Events are published after the owning
// transaction commits; a publish failure is logged but never fails the
// request.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishSaleCreated publishes a sale created event
func (p *Publisher) PublishSaleCreated(ctx context.Context, event SaleCreatedEvent) error {
	event.EventType = EventTypeSaleCreated
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicSaleCreated, fmt.Sprintf("sale_%d", event.SaleID), event.EventID, event.EventType, event)
}

// PublishSaleCancelled publishes a sale cancelled event
func (p *Publisher) PublishSaleCancelled(ctx context.Context, event SaleCancelledEvent) error {
	event.EventType = EventTypeSaleCancelled
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicSaleCancelled, fmt.Sprintf("sale_%d", event.SaleID), event.EventID, event.EventType, event)
}

// PublishStockMovement publishes a stock movement event
func (p *Publisher) PublishStockMovement(ctx context.Context, event StockMovementEvent) error {
	event.EventType = EventTypeStockMovement
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicStockMovements, fmt.Sprintf("product_%d", event.ProductID), event.EventID, event.EventType, event)
}

func (p *Publisher) publish(ctx context.Context, topic, key, eventID, eventType string, event interface{}) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	span.SetAttributes(attribute.String("event.id", eventID))

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Info(ctx).
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
