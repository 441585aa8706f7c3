package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	routingOrderCreated       = "order.created"
	routingOrderStatusChanged = "order.status_changed"
)

// AMQP publishes order events to a durable topic exchange.
type AMQP struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
	logger   *log.Logger
}

// Dial connects to the broker and declares the exchange. An empty exchange
// name falls back to "order_events".
func Dial(url, exchange string, logger *log.Logger) (*AMQP, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if exchange == "" {
		exchange = "order_events"
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial %s: %w", url, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: declare exchange %s: %w", exchange, err)
	}
	logger.Printf("notify: connected, exchange=%s", exchange)
	return &AMQP{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *AMQP) OrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return p.publish(ctx, routingOrderCreated, event)
}

func (p *AMQP) OrderStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error {
	return p.publish(ctx, routingOrderStatusChanged, event)
}

func (p *AMQP) publish(ctx context.Context, key string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal %s: %w", key, err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("notify: publish %s: %w", key, err)
	}
	p.logger.Printf("notify: published %s", key)
	return nil
}

func (p *AMQP) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
