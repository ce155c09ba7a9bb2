package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Cascade/internal/costs"
	"github.com/shaiso/Cascade/internal/domain"
)

// publishTimeout — ограничение на одну публикацию: зеркало не должно
// тормозить выполнение.
const publishTimeout = 2 * time.Second

// Publisher публикует события выполнения и записи о стоимости.
//
// Реализует orchestrator.EventSink и costs.Collector. Ошибки публикации
// логируются и не возвращаются наверх — зеркало best-effort.
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

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — ключ маршрутизации, продублированный в теле.
	Type string `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// Publish зеркалирует событие жизненного цикла запуска.
//
// Зеркалируются только события с внешней семантикой: старт и
// завершение запуска, завершение и падение узлов. Прочие события
// стрима пропускаются.
func (p *Publisher) Publish(runID string, ev domain.StreamEvent) {
	key, ok := routingKeyFor(ev)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.publish(ctx, ExchangeRuns, key, ev); err != nil {
		p.logger.Warn("failed to mirror run event",
			"run_id", runID,
			"routing_key", string(key),
			"error", err,
		)
	}
}

// RecordCost зеркалирует запись о стоимости.
func (p *Publisher) RecordCost(ctx context.Context, entry costs.Entry) error {
	if err := p.publish(ctx, ExchangeCosts, RoutingKeyCostRecorded, entry); err != nil {
		return fmt.Errorf("mirror cost entry: %w", err)
	}
	return nil
}

// routingKeyFor сопоставляет событие стрима ключу маршрутизации.
func routingKeyFor(ev domain.StreamEvent) (RoutingKey, bool) {
	switch ev.Type {
	case domain.EventLog:
		status, _ := ev.Data["status"].(string)
		switch domain.RunStatus(status) {
		case domain.RunStatusRunning:
			return RoutingKeyRunStarted, true
		case domain.RunStatusCompleted, domain.RunStatusFailed:
			return RoutingKeyRunCompleted, true
		}
		return "", false
	case domain.EventNodeCompleted:
		return RoutingKeyNodeCompleted, true
	case domain.EventNodeFailed:
		return RoutingKeyNodeFailed, true
	default:
		return "", false
	}
}

// publish отправляет сообщение в exchange.
func (p *Publisher) publish(ctx context.Context, exchange Exchange, key RoutingKey, payload any) error {
	msg := Message{
		ID:        uuid.New().String(),
		Type:      string(key),
		Payload:   payload,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange), // exchange
			string(key),      // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, key, err)
		}

		p.logger.Debug("published message",
			"exchange", string(exchange),
			"routing_key", string(key),
			"message_id", msg.ID,
		)

		return nil
	})
}
