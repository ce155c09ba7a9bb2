package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeRuns  Exchange = "cascade.runs"
	ExchangeCosts Exchange = "cascade.costs"
)

// Routing keys.
const (
	RoutingKeyRunStarted    RoutingKey = "run.started"
	RoutingKeyRunCompleted  RoutingKey = "run.completed"
	RoutingKeyNodeCompleted RoutingKey = "node.completed"
	RoutingKeyNodeFailed    RoutingKey = "node.failed"
	RoutingKeyCostRecorded  RoutingKey = "cost.recorded"
)

// SetupTopology объявляет обменники. Очереди не создаются: внешние
// потребители объявляют и привязывают свои.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		exchanges := []Exchange{ExchangeRuns, ExchangeCosts}

		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"topic",    // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		return nil
	})
}
