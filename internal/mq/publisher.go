package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MeasureEvent is published after a measure is created or confirmed.
type MeasureEvent struct {
	MeasureUUID     string `json:"measure_uuid"`
	CustomerCode    string `json:"customer_code"`
	MeasureType     string `json:"measure_type"`
	MeasureValue    int64  `json:"measure_value"`
	MeasureDatetime string `json:"measure_datetime"`
	HasConfirmed    bool   `json:"has_confirmed"`
}

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a new RabbitMQ publisher
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// Declare exchange
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// PublishMeasureEvent publishes a measure lifecycle event
func (p *Publisher) PublishMeasureEvent(ctx context.Context, event MeasureEvent, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published measure event",
		zap.String("routing_key", routingKey),
		zap.String("measure_uuid", event.MeasureUUID),
		zap.String("measure_type", event.MeasureType),
	)

	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}

// DisabledPublisher drops events. Used when no RabbitMQ URL is configured.
type DisabledPublisher struct {
	logger *zap.Logger
}

// NewDisabledPublisher creates a publisher that discards every event.
func NewDisabledPublisher(logger *zap.Logger) *DisabledPublisher {
	return &DisabledPublisher{logger: logger}
}

// PublishMeasureEvent logs and drops the event.
func (p *DisabledPublisher) PublishMeasureEvent(ctx context.Context, event MeasureEvent, routingKey string) error {
	p.logger.Debug("event publishing disabled, dropping event",
		zap.String("routing_key", routingKey),
		zap.String("measure_uuid", event.MeasureUUID),
	)
	return nil
}
