package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/clipdeck/statistics-service/internal/apperrors"
	"github.com/clipdeck/statistics-service/internal/campaigncache"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// StatsRefresher is the subset of StatsCollector the consumer needs for
// clip.approved — named here rather than imported, since StatsCollector
// itself depends on this package's Publisher interface.
type StatsRefresher interface {
	RefreshClipStats(ctx context.Context, submissionID string, platform models.Platform, videoID string) (*models.PlatformStats, error)
}

// BotRunner is the subset of botdetect.Runner the consumer needs for
// stats.requested — named here rather than imported, since botdetect.Runner
// itself depends on this package's Publisher interface.
type BotRunner interface {
	Run(ctx context.Context, clipID string) models.BotDetectionResult
}

const (
	// QueueName is the durable queue EventConsumer binds to every
	// routing key it handles, with a dead-letter binding configured at
	// declare time by the composition root.
	QueueName     = "statistics.events"
	prefetchCount = 10
	maxAttempts   = 3
)

var consumedRoutingKeys = []string{
	string(models.EventClipSubmitted),
	string(models.EventClipApproved),
	string(models.EventStatsRequested),
	string(models.EventCampaignCreated),
	string(models.EventCampaignStatusChange),
}

// ConsumedRoutingKeys lists every routing key the queue binds to, for the
// composition root's topology declaration.
func ConsumedRoutingKeys() []string {
	return consumedRoutingKeys
}

// Consumer subscribes to statistics.events and dispatches each delivery to
// the handler matching its routing key, retrying up to maxAttempts times
// before dead-lettering.
type Consumer struct {
	channel     *amqp.Channel
	exchange    string
	clipService *peers.ClipServiceClient
	collector   StatsRefresher
	botRunner   BotRunner
	campaigns   *campaigncache.Cache
	deadLetters *DeadLetterStore
	log         *logger.Logger
	m           *metrics.Metrics
}

// NewConsumer builds a Consumer bound to an already-declared channel. The
// queue, exchange bindings and dead-letter exchange are declared by the
// composition root at startup, not here.
func NewConsumer(channel *amqp.Channel, exchange string, clipService *peers.ClipServiceClient, coll StatsRefresher, botRunner BotRunner, campaigns *campaigncache.Cache, deadLetters *DeadLetterStore, log *logger.Logger, m *metrics.Metrics) *Consumer {
	return &Consumer{channel: channel, exchange: exchange, clipService: clipService, collector: coll, botRunner: botRunner, campaigns: campaigns, deadLetters: deadLetters, log: log, m: m}
}

// Run blocks, consuming from QueueName until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.channel.Qos(prefetchCount, 0, false); err != nil {
		return apperrors.New(apperrors.KindBroker, "consumer.Qos", err)
	}

	deliveries, err := c.channel.Consume(QueueName, "statistics-service", false, false, false, false, nil)
	if err != nil {
		return apperrors.New(apperrors.KindBroker, "consumer.Consume", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			go c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := decodeEvent(d.RoutingKey, d.Body)
	if err != nil {
		c.log.Error("event decode failed", "routingKey", d.RoutingKey, "error", err)
		_ = d.Nack(false, false)
		c.m.RecordDeadLetter(d.RoutingKey)
		if c.deadLetters != nil {
			c.deadLetters.Record(d.RoutingKey, d.Body, err.Error())
		}
		return
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1)
	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		if attempts > 1 {
			c.m.RecordEventRetry(d.RoutingKey)
		}
		return c.dispatch(ctx, event)
	}, policy)

	if err != nil {
		c.m.RecordEventHandled(d.RoutingKey, "dead_letter")
		c.log.Error("event handler exhausted retries, dead-lettering", "routingKey", d.RoutingKey, "attempts", attempts, "error", err)
		_ = d.Nack(false, false)
		c.m.RecordDeadLetter(d.RoutingKey)
		if c.deadLetters != nil {
			c.deadLetters.Record(d.RoutingKey, d.Body, err.Error())
		}
		return
	}
	c.m.RecordEventHandled(d.RoutingKey, "success")
	_ = d.Ack(false)
}

func (c *Consumer) dispatch(ctx context.Context, event models.Event) error {
	switch event.Tag {
	case models.EventClipSubmitted:
		c.log.Info("clip submitted", "submissionId", event.ClipSubmitted.SubmissionID)
		return nil

	case models.EventStatsRequested:
		submissionID := event.StatsRequested.SubmissionID
		result := c.botRunner.Run(ctx, submissionID)
		c.log.Info("stats requested: bot detection run", "submissionId", submissionID, "confidence", result.ConfidenceScore, "flags", len(result.Flags))
		return nil

	case models.EventClipApproved:
		payload := event.ClipApproved
		clip, err := c.clipService.GetClip(ctx, payload.SubmissionID)
		if err != nil {
			return err
		}
		if clip.PlatformVideoID == "" {
			return nil
		}
		platform, ok := models.ParsePlatform(clip.Platform)
		if !ok {
			return fmt.Errorf("clip.approved: unknown platform %q", clip.Platform)
		}
		_, err = c.collector.RefreshClipStats(ctx, payload.SubmissionID, platform, clip.PlatformVideoID)
		return err

	case models.EventCampaignCreated:
		return c.campaigns.OnCampaignCreated(ctx, *event.CampaignCreated)

	case models.EventCampaignStatusChange:
		return c.campaigns.OnCampaignStatusChanged(ctx, *event.CampaignStatusChange)

	default:
		return fmt.Errorf("unhandled routing key %q", event.Tag)
	}
}

func decodeEvent(routingKey string, body []byte) (models.Event, error) {
	switch models.EventTag(routingKey) {
	case models.EventClipSubmitted:
		var p models.ClipSubmittedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return models.Event{}, err
		}
		return models.Event{Tag: models.EventClipSubmitted, ClipSubmitted: &p}, nil

	case models.EventClipApproved:
		var p models.ClipApprovedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return models.Event{}, err
		}
		return models.Event{Tag: models.EventClipApproved, ClipApproved: &p}, nil

	case models.EventStatsRequested:
		var p models.StatsRequestedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return models.Event{}, err
		}
		return models.Event{Tag: models.EventStatsRequested, StatsRequested: &p}, nil

	case models.EventCampaignCreated:
		var p models.CampaignCreatedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return models.Event{}, err
		}
		return models.Event{Tag: models.EventCampaignCreated, CampaignCreated: &p}, nil

	case models.EventCampaignStatusChange:
		var p models.CampaignStatusChangedPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return models.Event{}, err
		}
		return models.Event{Tag: models.EventCampaignStatusChange, CampaignStatusChange: &p}, nil

	default:
		return models.Event{}, errors.New("unknown routing key " + routingKey)
	}
}
