// Package service publishes console events to RabbitMQ.  Errors are logged
// and returned so callers can ignore them without interrupting the request.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/directory-admin/internal/queue"
)

// Publisher sends audit events.
type Publisher interface {
    Publish(ctx context.Context, ev q.AuditEvent) error
}

// Nop discards events; used when auditing is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, q.AuditEvent) error { return nil }

// AMQPPublisher dials the broker per event and publishes a persistent
// message to the admin.audit queue.
type AMQPPublisher struct {
    URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// Publish never panics; every failure is logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.AuditEvent) error {
    conn, err := amqp.Dial(p.URL)
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
        q.AuditQueueName, // name
        true,             // durable
        false,            // autoDelete
        false,            // exclusive
        false,            // noWait
        nil,              // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.AuditQueueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// Recorder is the handler-facing side of auditing: it builds the event and
// publishes it, swallowing the error after it has been logged.
type Recorder struct {
    Pub Publisher
}

// Record publishes one event; a nil Recorder or Publisher is a no-op.
func (r *Recorder) Record(ctx context.Context, action, entity, entityID, actorID, actor string) {
    if r == nil || r.Pub == nil {
        return
    }
    ev := q.NewAuditEvent(action, entity, entityID, actorID, actor)
    if err := r.Pub.Publish(ctx, ev); err != nil {
        log.Printf("audit: %s %s %s not published: %v", action, entity, entityID, err)
    }
}
