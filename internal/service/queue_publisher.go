// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the main request flow; event delivery is best-effort by design.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/localdeals/residence/internal/queue"
)

// PublishDemandeCreated publishes a DemandeCreatedEvent to the
// demande.created queue.
func PublishDemandeCreated(ctx context.Context, event q.DemandeCreatedEvent) error {
	return publish(ctx, q.DemandeCreatedQueue, event)
}

// PublishMessageCreated publishes a MessageCreatedEvent to the
// message.created queue.
func PublishMessageCreated(ctx context.Context, event q.MessageCreatedEvent) error {
	return publish(ctx, q.MessageCreatedQueue, event)
}

// PublishReponseCreated publishes a ReponseCreatedEvent to the
// reponse.created queue.
func PublishReponseCreated(ctx context.Context, event q.ReponseCreatedEvent) error {
	return publish(ctx, q.ReponseCreatedQueue, event)
}

// publish opens a short-lived connection, declares the durable queue
// (idempotent) and sends the event as persistent JSON. It never panics; any
// error is logged and returned for the caller to ignore.
func publish(ctx context.Context, queue string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
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

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
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
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
