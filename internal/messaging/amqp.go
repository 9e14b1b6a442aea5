package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OutboundMessage is the body published for the channel driver.
type OutboundMessage struct {
	To     string    `json:"to"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes replies to a durable RabbitMQ queue consumed by the chat
// channel driver.
type AMQP struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    publisher
	queue string
	now   func() time.Time
}

func DialAMQP(url, queue string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	log.Printf("[messaging] publishing replies to queue %s", queue)
	return &AMQP{conn: conn, ch: ch, queue: queue, now: time.Now}, nil
}

func encode(to, text string, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(OutboundMessage{To: to, Text: text, SentAt: now.UTC()})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}, nil
}

func (a *AMQP) SendText(ctx context.Context, to, text string) error {
	msg, err := encode(to, text, a.now())
	if err != nil {
		return err
	}
	// amqp channels are not safe for concurrent publishing.
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ch.PublishWithContext(ctx, "", a.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish reply to %s: %w", to, err)
	}
	return nil
}

func (a *AMQP) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
