package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const (
	exchangeName = "catalog.events"
	exchangeKind = "topic"
)

// Config carries the connection settings for the broker.
type Config struct {
	URL string
}

// Publisher is the capability the service layer depends on. The
// concrete Client satisfies it; tests substitute a mock.
type Publisher interface {
	PublishProductEvent(action string, payload interface{}) error
	Close() error
}

// Client wraps an AMQP connection and channel bound to the catalog
// events exchange.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient dials the broker and declares the events exchange.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Client{conn: conn, channel: ch}, nil
}

// productEvent is the wire shape of a lifecycle event.
type productEvent struct {
	EventID   string      `json:"event_id"`
	Action    string      `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
	Product   interface{} `json:"product"`
}

// PublishProductEvent publishes a product lifecycle event with routing
// key "product.<action>" (created, updated, deleted).
func (c *Client) PublishProductEvent(action string, payload interface{}) error {
	event := productEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		Timestamp: time.Now(),
		Product:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	return c.channel.Publish(
		exchangeName,
		"product."+action,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close shuts down the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
