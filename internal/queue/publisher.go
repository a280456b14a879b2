package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names for reservation lifecycle events.
const (
	ReservationCreatedQueue = "reservation.created"
	ReservationDeletedQueue = "reservation.deleted"
)

// Publisher sends domain events to RabbitMQ. Publishing is strictly
// best-effort: every error is logged and returned so callers can
// ignore failures without interrupting the request flow. A Publisher
// with an empty URL is valid and drops every event silently.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL. An empty
// URL disables publishing.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishReservationCreated emits a ReservationCreatedEvent.
func (p *Publisher) PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	return p.publish(ctx, ReservationCreatedQueue, event)
}

// PublishReservationDeleted emits a ReservationDeletedEvent.
func (p *Publisher) PublishReservationDeleted(ctx context.Context, event ReservationDeletedEvent) error {
	return p.publish(ctx, ReservationDeletedQueue, event)
}

// publish marshals the event and sends it to the named queue on the
// default exchange. The queue is declared durable and messages are
// marked persistent so they survive broker restarts.
func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	if p == nil || p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declaration; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
