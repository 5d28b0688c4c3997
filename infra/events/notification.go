// Package events publishes verified checkout notifications to NATS JetStream
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/placetopay/provider"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// SubjectPrefix is prepended to the lower-cased status of every notification
	SubjectPrefix = "placetopay.notification"
	// EventSubjectPrefix is prepended to the lower-cased type of every signed gateway event
	EventSubjectPrefix = "placetopay.event"
)

const defaultMaxAge = 7 * 24 * time.Hour

// jetStreamPublisher is the part of jetstream.JetStream the publisher uses
type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NotificationEvent is the message body published for each notification
type NotificationEvent struct {
	ID         string                         `json:"id"`
	ReceivedAt time.Time                      `json:"receivedAt"`
	Verified   bool                           `json:"verified"`
	Payload    *provider.CheckoutNotification `json:"notification"`
}

// Publisher sends notifications to a JetStream stream
type Publisher struct {
	conn *nats.Conn
	js   jetStreamPublisher
	now  func() time.Time
}

// Connect dials NATS and makes sure the notification stream exists.
// name identifies the connection on the server, e.g. placetopay-<instance id>.
func Connect(ctx context.Context, url, stream, name string) (*Publisher, error) {
	if name == "" {
		name = "placetopay"
	}
	nc, err := nats.Connect(
		url,
		nats.Name(name),
		nats.ReconnectWait(3*time.Second),
		nats.MaxReconnects(-1),
		nats.PingInterval(10*time.Second),
		nats.MaxPingsOutstanding(5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to initialize jetstream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{SubjectPrefix + ".>", EventSubjectPrefix + ".>"},
		MaxAge:   defaultMaxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", stream, err)
	}

	return &Publisher{conn: nc, js: js, now: time.Now}, nil
}

// NewPublisher wraps an existing JetStream context
func NewPublisher(js jetStreamPublisher) *Publisher {
	return &Publisher{js: js, now: time.Now}
}

// Subject returns the subject a notification with the given status is published on
func Subject(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = "unknown"
	}
	return SubjectPrefix + "." + status
}

// PublishNotification publishes a notification and returns the message id.
// The signature doubles as the JetStream deduplication id so gateway
// retries of the same notification are stored once.
func (p *Publisher) PublishNotification(ctx context.Context, n *provider.CheckoutNotification, verified bool) (string, error) {
	if n == nil {
		return "", fmt.Errorf("notification is required")
	}

	id := n.Signature
	if id == "" {
		id = uuid.NewString()
	}

	data, err := json.Marshal(NotificationEvent{
		ID:         id,
		ReceivedAt: p.now().UTC(),
		Verified:   verified,
		Payload:    n,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode notification: %w", err)
	}

	if _, err := p.js.Publish(ctx, Subject(n.Status.Status), data, jetstream.WithMsgID(id)); err != nil {
		return "", fmt.Errorf("failed to publish notification %s: %w", n.RequestID.String(), err)
	}
	return id, nil
}

// GatewayEvent is the message body published for each signed gateway event
type GatewayEvent struct {
	ID         string          `json:"id"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"event"`
}

// EventSubject returns the subject an event of the given type is published on
func EventSubject(eventType string) string {
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" {
		return EventSubjectPrefix + ".unknown"
	}
	return EventSubjectPrefix + "." + strings.Join(strings.Fields(eventType), "_")
}

// PublishEvent publishes a verified raw event body. The HMAC signature is the
// deduplication id, so a redelivered event is stored once.
func (p *Publisher) PublishEvent(ctx context.Context, raw []byte, signature string) (string, error) {
	if !json.Valid(raw) {
		return "", fmt.Errorf("event body is not valid json")
	}

	var head struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(raw, &head)

	id := signature
	if id == "" {
		id = uuid.NewString()
	}

	data, err := json.Marshal(GatewayEvent{
		ID:         id,
		ReceivedAt: p.now().UTC(),
		Type:       head.Type,
		Payload:    raw,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := p.js.Publish(ctx, EventSubject(head.Type), data, jetstream.WithMsgID(id)); err != nil {
		return "", fmt.Errorf("failed to publish event %s: %w", head.Type, err)
	}
	return id, nil
}

// Close drains the underlying connection when the publisher owns one
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
