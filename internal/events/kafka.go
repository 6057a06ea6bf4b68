package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// kafkaPublisher publishes order events to a Kafka topic through a
// buffered inbox, so a slow broker never stalls a checkout.
type kafkaPublisher struct {
	writer *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger zerolog.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher and starts its
// delivery loop. Close flushes buffered events and stops the loop.
func NewKafkaPublisher(brokers []string, topic string, buffer int, logger zerolog.Logger) Publisher {
	p := &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, buffer),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "kafka-publisher").Logger(),
	}

	go p.run()

	p.logger.Info().Str("topic", topic).Msg("kafka publisher started")

	return p
}

func (p *kafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.inbox {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.logger.Error().Err(err).Msg("failed to publish event")
		}
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close kafka writer")
	}
}

// PublishOrderCreated queues the event for delivery. Events are dropped
// with a log entry when the inbox is full rather than blocking the
// caller.
func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, event OrderCreated) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to marshal order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  time.Now(),
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().
			Str("order_id", event.OrderID.String()).
			Msg("event inbox full, dropping order event")
	}
}

// Close flushes buffered events and shuts the publisher down.
func (p *kafkaPublisher) Close() error {
	close(p.inbox)
	<-p.done
	return nil
}
