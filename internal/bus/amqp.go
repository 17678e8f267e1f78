package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const signOutQueueName = "session.signed_out"

// SignOutEvent is the broker payload emitted when a device session is
// invalidated. It carries enough for downstream consumers (support
// dashboards, audit logs) without querying the API.
type SignOutEvent struct {
	Event      string `json:"event"`
	Reason     string `json:"reason"`
	OccurredAt string `json:"occurred_at"`
}

// Bridge republishes unauthorized events from an in-process Bus to a durable
// RabbitMQ queue. Publishing is best effort: any broker error is logged and
// swallowed so a dead broker can never block a local sign-out.
type Bridge struct {
	url   string
	unsub func()
}

// NewBridge subscribes to the bus and starts forwarding. Call Close to stop.
func NewBridge(b *Bus, url string) *Bridge {
	br := &Bridge{url: url}
	br.unsub = b.Subscribe(EventUnauthorized, func(reason string) {
		if err := br.publish(reason); err != nil {
			slog.Warn("bus: sign-out broadcast failed", "error", err)
		}
	})
	return br
}

// Close stops forwarding events to the broker.
func (br *Bridge) Close() {
	if br.unsub != nil {
		br.unsub()
	}
}

// publish dials the broker, declares the queue (idempotent, durable) and
// sends one persistent message. A connection per event keeps the bridge
// stateless; sign-outs are rare enough that this costs nothing.
func (br *Bridge) publish(reason string) error {
	conn, err := amqp.Dial(br.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		signOutQueueName, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		return err
	}

	now := time.Now().UTC()
	body, err := json.Marshal(SignOutEvent{
		Event:      EventUnauthorized,
		Reason:     reason,
		OccurredAt: now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx,
		"",               // default exchange
		signOutQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Body:         body,
		},
	)
}
