package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeWorkflowActivated MessageType = "workflow.activated"
	MessageTypeCredentialCreated MessageType = "credential.created"
)

// Publisher публикует события в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт события.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// WorkflowActivatedPayload — payload события workflow.activated.
type WorkflowActivatedPayload struct {
	WorkflowID string `json:"workflow_id"`
	RequestID  string `json:"request_id,omitempty"`
}

// CredentialCreatedPayload — payload события credential.created.
// Секреты credential в событие не попадают, только имя и тип.
type CredentialCreatedPayload struct {
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func newMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishWorkflowActivated публикует событие об активации workflow.
func (p *Publisher) PublishWorkflowActivated(ctx context.Context, payload WorkflowActivatedPayload) error {
	msg := newMessage(MessageTypeWorkflowActivated, payload)
	return p.Publish(ctx, ExchangeEvents, RoutingKeyWorkflowActivated, msg)
}

// PublishCredentialCreated публикует событие о создании credential.
func (p *Publisher) PublishCredentialCreated(ctx context.Context, payload CredentialCreatedPayload) error {
	msg := newMessage(MessageTypeCredentialCreated, payload)
	return p.Publish(ctx, ExchangeEvents, RoutingKeyCredentialCreated, msg)
}
