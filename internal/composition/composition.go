// Package composition builds the statistics-service dependency graph in
// one explicit place. There is no package-level singleton anywhere in this
// module — every component is constructed here and passed down by
// reference from main.
package composition

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/campaigncache"
	"github.com/clipdeck/statistics-service/internal/collector"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/handlers"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/peers"
	"github.com/clipdeck/statistics-service/internal/platforms"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/internal/repositories"
	"github.com/clipdeck/statistics-service/internal/router"
	"github.com/clipdeck/statistics-service/internal/scheduler"
	"github.com/clipdeck/statistics-service/pkg/db"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// deadLetterExchange is the exchange the durable event queue dead-letters
// into, so a broker-level Nack also lands messages somewhere
// inspectable outside this service — DeadLetterStore is the
// application-level record an operator actually acts on.
const deadLetterExchange = "clipdeck.events.dead-letter"

// Root holds every long-lived component the server and its background
// workers need. Built once in main, never re-built.
type Root struct {
	Config *config.Config
	Logger *logger.Logger
	Metrics *metrics.Metrics

	DB          *db.DB
	RedisClient *redis.Client
	AMQPConn    *amqp.Connection
	AMQPChannel *amqp.Channel

	ClipService     *peers.ClipServiceClient
	CampaignService *peers.CampaignServiceClient

	Registry  *platforms.Registry
	Cache     *cache.StatsCache
	Publisher *events.AMQPPublisher
	Collector *collector.StatsCollector

	BotDetectRunner *botdetect.Runner

	RankingRepo     models.RankingRepository
	RankingsEngine  *rankings.Engine
	CampaignCache   *campaigncache.Cache
	DeadLetterStore *events.DeadLetterStore

	Consumer  *events.Consumer
	Scheduler *scheduler.Scheduler

	Router *router.Handlers
}

// New wires every component from already-loaded configuration. It opens
// real network connections (database, redis, amqp) — callers own calling
// Close on shutdown.
func New(cfg *config.Config, log *logger.Logger) (*Root, error) {
	m := metrics.New()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("composition: connect db: %w", err)
	}
	if err := database.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("composition: auto-migrate: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("composition: parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	amqpConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("composition: dial amqp: %w", err)
	}
	amqpChannel, err := amqpConn.Channel()
	if err != nil {
		return nil, fmt.Errorf("composition: open amqp channel: %w", err)
	}
	if err := declareTopology(amqpChannel, cfg.EventExchange); err != nil {
		return nil, fmt.Errorf("composition: declare amqp topology: %w", err)
	}

	clipService := peers.NewClipServiceClient(cfg.ClipServiceURL, cfg.ServiceName)
	campaignService := peers.NewCampaignServiceClient(cfg.CampaignServiceURL, cfg.ServiceName)

	registry := platforms.NewDefaultRegistry(cfg.YouTubeAPIKey, log)
	statsCache := cache.New(redisClient, log, m)
	publisher := events.NewAMQPPublisher(amqpChannel, cfg.EventExchange, cfg.ServiceName, log)
	coll := collector.New(registry, statsCache, publisher, log, m)

	botRunner := botdetect.NewRunner(clipService, publisher, log, m)

	rankingRepo := repositories.NewRankingRepository(database.GetDB())
	rankingsEngine := rankings.New(clipService, rankingRepo, log, m)

	campaignCacheRepo := repositories.NewCampaignCacheRepository(database.GetDB())
	campaignCache := campaigncache.New(campaignCacheRepo, campaignService, log)

	deadLetterRepo := repositories.NewDeadLetterRepository(database.GetDB())
	deadLetterStore := events.NewDeadLetterStore(deadLetterRepo, publisher, log)

	consumer := events.NewConsumer(amqpChannel, cfg.EventExchange, clipService, coll, botRunner, campaignCache, deadLetterStore, log, m)
	sched := scheduler.New(clipService, coll, rankingsEngine, log)

	baseHandler := handlers.NewBaseHandler(cfg, log, database)
	routerHandlers := &router.Handlers{
		Stats:    handlers.NewStatsHandler(baseHandler, clipService, coll),
		Rankings: handlers.NewRankingsHandler(baseHandler, rankingRepo, rankingsEngine),
		Internal: handlers.NewInternalHandler(baseHandler, deadLetterStore),
	}

	return &Root{
		Config:          cfg,
		Logger:          log,
		Metrics:         m,
		DB:              database,
		RedisClient:     redisClient,
		AMQPConn:        amqpConn,
		AMQPChannel:     amqpChannel,
		ClipService:     clipService,
		CampaignService: campaignService,
		Registry:        registry,
		Cache:           statsCache,
		Publisher:       publisher,
		Collector:       coll,
		BotDetectRunner: botRunner,
		RankingRepo:     rankingRepo,
		RankingsEngine:  rankingsEngine,
		CampaignCache:   campaignCache,
		DeadLetterStore: deadLetterStore,
		Consumer:        consumer,
		Scheduler:       sched,
		Router:          routerHandlers,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(deadLetterExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(events.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": deadLetterExchange,
	})
	if err != nil {
		return err
	}

	for _, routingKey := range events.ConsumedRoutingKeys() {
		if err := ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
			return err
		}
	}

	dlq, err := ch.QueueDeclare(events.QueueName+".dead-letter", true, false, false, false, nil)
	if err != nil {
		return err
	}
	return ch.QueueBind(dlq.Name, "#", deadLetterExchange, false, nil)
}

// Close releases every external connection the Root opened, in reverse
// dependency order.
func (r *Root) Close() {
	if err := r.AMQPChannel.Close(); err != nil {
		r.Logger.Warn("composition: close amqp channel failed", "error", err)
	}
	if err := r.AMQPConn.Close(); err != nil {
		r.Logger.Warn("composition: close amqp connection failed", "error", err)
	}
	if err := r.RedisClient.Close(); err != nil {
		r.Logger.Warn("composition: close redis client failed", "error", err)
	}
	if err := r.DB.Close(); err != nil {
		r.Logger.Warn("composition: close db failed", "error", err)
	}
}
