package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

const (
	RoutingKeyStatsUpdated    = "stats.updated"
	RoutingKeyStatsBotDetected = "stats.bot_detected"
)

// Publisher publishes domain events onto the shared topic exchange. It is
// held once by the composition root and passed down explicitly — there is
// no package-level singleton.
type Publisher interface {
	PublishStatsUpdated(ctx context.Context, event models.StatsUpdatedEvent) error
	PublishBotDetected(ctx context.Context, event models.BotDetectedEvent) error
}

// AMQPPublisher publishes onto a topic exchange over amqp091-go.
type AMQPPublisher struct {
	channel      *amqp.Channel
	exchange     string
	serviceName  string
	log          *logger.Logger
}

// NewAMQPPublisher builds an AMQPPublisher bound to an already-declared
// topic exchange.
func NewAMQPPublisher(channel *amqp.Channel, exchange, serviceName string, log *logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{channel: channel, exchange: exchange, serviceName: serviceName, log: log}
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.New(apperrors.KindParse, "publish."+routingKey, err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return apperrors.New(apperrors.KindBroker, "publish."+routingKey, fmt.Errorf("publish %s: %w", routingKey, err))
	}
	return nil
}

// PublishStatsUpdated publishes a stats.updated event.
func (p *AMQPPublisher) PublishStatsUpdated(ctx context.Context, event models.StatsUpdatedEvent) error {
	event.Service = p.serviceName
	event.Timestamp = time.Now()
	return p.publish(ctx, RoutingKeyStatsUpdated, event)
}

// PublishBotDetected publishes a stats.bot_detected event.
func (p *AMQPPublisher) PublishBotDetected(ctx context.Context, event models.BotDetectedEvent) error {
	event.Service = p.serviceName
	event.Timestamp = time.Now()
	return p.publish(ctx, RoutingKeyStatsBotDetected, event)
}

// RepublishRaw re-publishes an already-encoded body under routingKey,
// used by the dead-letter requeue endpoint to put a failed delivery back
// onto the exchange for re-consumption.
func (p *AMQPPublisher) RepublishRaw(ctx context.Context, routingKey string, body []byte) error {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.channel.PublishWithContext(pctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return apperrors.New(apperrors.KindBroker, "republish."+routingKey, fmt.Errorf("republish %s: %w", routingKey, err))
	}
	return nil
}
