package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// Sink delivers a single activity to the activity service
type Sink interface {
	Send(ctx context.Context, a domain.Activity) error
}

// NopSink discards activities. Used when the transport is disabled.
type NopSink struct{}

// Send implements Sink
func (NopSink) Send(ctx context.Context, a domain.Activity) error { return nil }

// HTTPSink posts activities as JSON to the activity service
type HTTPSink struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPSink creates an HTTP sink posting to url with the x-api-key header
func NewHTTPSink(url, apiKey string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Send implements Sink
func (s *HTTPSink) Send(ctx context.Context, a domain.Activity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build activity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("activity service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Publisher is the subset of *amqp.Channel used to publish activities
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes activities to a RabbitMQ exchange
type AMQPSink struct {
	conn       *amqp.Connection
	publisher  Publisher
	exchange   string
	routingKey string
}

// DialAMQPSink connects to RabbitMQ and declares a durable topic exchange
func DialAMQPSink(url, exchange, routingKey string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	sink := NewAMQPSink(ch, exchange, routingKey)
	sink.conn = conn
	return sink, nil
}

// NewAMQPSink wraps an existing publisher
func NewAMQPSink(p Publisher, exchange, routingKey string) *AMQPSink {
	return &AMQPSink{publisher: p, exchange: exchange, routingKey: routingKey}
}

// Send implements Sink
func (s *AMQPSink) Send(ctx context.Context, a domain.Activity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}

	err = s.publisher.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         string(a.ActivityType),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}
	return nil
}

// Close closes the underlying connection, if the sink owns one
func (s *AMQPSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
