// Package rabbitmq mirrors session lifecycle events onto an AMQP fanout
// exchange so consumers outside the WebSocket population can follow along.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher is the transport the lifecycle bridge publishes through.
type Publisher interface {
	Publish(exchange string, body []byte) error
}

// AMQPPublisher publishes JSON bodies to a durable fanout exchange over one
// shared connection and channel.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher connects to the broker at amqpURL.
func NewAMQPPublisher(amqpURL string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}
	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

// Publish declares the exchange and publishes body to it. Declaring on every
// publish keeps the exchange present even if the broker was reset.
func (p *AMQPPublisher) Publish(exchange string, body []byte) error {
	err := p.channel.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declaring exchange %q: %w", exchange, err)
	}

	err = p.channel.Publish(
		exchange,
		"", // fanout ignores the routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to exchange %q: %w", exchange, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
