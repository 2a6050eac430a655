package models

import "time"

// DeadLetterMessage records an event delivery that exhausted its retry
// policy, so an operator can inspect and requeue it from the admin API
// instead of reaching for the broker directly.
type DeadLetterMessage struct {
	ID         string `gorm:"primaryKey;size:36"`
	RoutingKey string `gorm:"size:255;not null"`
	Payload    string `gorm:"type:text;not null"`
	Reason     string `gorm:"size:500"`
	FailedAt   time.Time
	RequeuedAt *time.Time
}

func (DeadLetterMessage) TableName() string { return "dead_letter_messages" }

// DeadLetterRepository persists DeadLetterMessage rows.
type DeadLetterRepository interface {
	Create(msg *DeadLetterMessage) error
	Get(id string) (*DeadLetterMessage, error)
	MarkRequeued(id string, requeuedAt time.Time) error
}
