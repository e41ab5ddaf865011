package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — обменник событий API.
const ExchangeEvents Exchange = "nodehub.events"

// QueueAudit — очередь, в которую попадают все события.
const QueueAudit Queue = "nodehub.audit"

// Routing keys совпадают с типами сообщений.
const (
	RoutingKeyWorkflowActivated RoutingKey = "workflow.activated"
	RoutingKeyCredentialCreated RoutingKey = "credential.created"
)

// SetupTopology объявляет exchange и очередь аудита. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"direct",               // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueAudit), // name
			true,               // durable
			false,              // delete when unused
			false,              // exclusive
			false,              // no-wait
			nil,                // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAudit, err)
		}

		for _, key := range []RoutingKey{RoutingKeyWorkflowActivated, RoutingKeyCredentialCreated} {
			if err := ch.QueueBind(string(QueueAudit), string(key), string(ExchangeEvents), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s/%s: %w", QueueAudit, ExchangeEvents, key, err)
			}
		}

		return nil
	})
}
