package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const RoutingKey = "notify.email"

// Message 是发布到交换机的邮件通知
type Message struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// Publisher is the part of *amqp.Channel the sender needs.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes notifications to a topic exchange; a mail worker
// consumes them. Failed publishes are retried with a growing delay.
type AMQPSender struct {
	pub      Publisher
	exchange string
	retries  int
	delay    time.Duration
	log      *slog.Logger

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPSender(pub Publisher, exchange string, retries int, delay time.Duration, log *slog.Logger) *AMQPSender {
	if retries <= 0 {
		retries = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &AMQPSender{pub: pub, exchange: exchange, retries: retries, delay: delay, log: log}
}

// DialAMQP connects, opens a channel and declares the durable topic exchange.
func DialAMQP(url, exchange string, retries int, log *slog.Logger) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	s := NewAMQPSender(ch, exchange, retries, time.Second, log)
	s.conn, s.ch = conn, ch
	return s, nil
}

func (s *AMQPSender) Send(ctx context.Context, address, subject, body string) error {
	msg := Message{
		ID:      uuid.NewString(),
		To:      address,
		Subject: subject,
		Body:    body,
		SentAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.SentAt,
	}

	var lastErr error
	for i := 0; i < s.retries; i++ {
		if lastErr = s.pub.Publish(s.exchange, RoutingKey, false, false, pub); lastErr == nil {
			s.log.Debug("notification published", "id", msg.ID, "to", address)
			return nil
		}
		s.log.Warn("publish notification failed", "attempt", i+1, "of", s.retries, "err", lastErr)
		if i == s.retries-1 {
			break
		}
		select {
		case <-time.After(s.delay * time.Duration(i+1)):
		case <-ctx.Done():
			return fmt.Errorf("publish notification: %w", ctx.Err())
		}
	}
	return fmt.Errorf("publish notification after %d attempts: %w", s.retries, lastErr)
}

func (s *AMQPSender) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
