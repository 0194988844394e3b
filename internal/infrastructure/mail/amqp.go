// Package mail contains the transports that deliver verification messages.
package mail

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/99minutos/auth-system/internal/core/domain"
)

// VerificationRoutingKey is the topic a mail worker binds to.
const VerificationRoutingKey = "auth.email.verification"

// AMQPPublisher publishes verification messages to a topic exchange. A
// separate mail worker owns the actual SMTP delivery.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) SendVerification(ctx context.Context, msg domain.VerificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode verification message: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, VerificationRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.UserID + ":" + msg.ExpiresAt.Format("20060102T150405"),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish verification message: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
