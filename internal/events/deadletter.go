package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/pkg/logger"
)

// DeadLetterStore records exhausted deliveries and requeues them on
// operator request. It sits alongside the broker's own dead-letter
// exchange: the broker still owns message durability, this store owns
// the admin-facing record an operator can act on.
type DeadLetterStore struct {
	repo      models.DeadLetterRepository
	publisher *AMQPPublisher
	log       *logger.Logger
}

// NewDeadLetterStore builds a DeadLetterStore.
func NewDeadLetterStore(repo models.DeadLetterRepository, publisher *AMQPPublisher, log *logger.Logger) *DeadLetterStore {
	return &DeadLetterStore{repo: repo, publisher: publisher, log: log}
}

// Record persists a dead-lettered delivery for later inspection/requeue.
func (s *DeadLetterStore) Record(routingKey string, body []byte, reason string) {
	msg := &models.DeadLetterMessage{
		ID:         uuid.NewString(),
		RoutingKey: routingKey,
		Payload:    string(body),
		Reason:     reason,
		FailedAt:   time.Now(),
	}
	if err := s.repo.Create(msg); err != nil {
		s.log.Error("dead letter store: record failed", "routingKey", routingKey, "error", err)
	}
}

// Requeue re-publishes a previously dead-lettered message onto the
// exchange under its original routing key and marks it requeued.
func (s *DeadLetterStore) Requeue(ctx context.Context, id string) error {
	msg, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if msg.RequeuedAt != nil {
		return models.ErrConflict
	}
	if err := s.publisher.RepublishRaw(ctx, msg.RoutingKey, []byte(msg.Payload)); err != nil {
		return err
	}
	return s.repo.MarkRequeued(id, time.Now())
}
